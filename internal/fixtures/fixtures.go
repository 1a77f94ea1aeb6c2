// internal/fixtures/fixtures.go

// Package fixtures loads the expected literals and form inputs the scenario
// sequences use. A built-in catalog describes the Lispico panel; a YAML file
// can replace parts of it.
package fixtures

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xkilldash9x/lispico-e2e/api/schemas"
)

//go:embed defaults.yaml
var defaultCatalog []byte

// Login describes the login page contract.
type Login struct {
	Path            string `yaml:"path"`
	HeadingSelector string `yaml:"heading_selector"`
	Heading         string `yaml:"heading"`
	EmailID         string `yaml:"email_id"`
	PasswordID      string `yaml:"password_id"`
	LandingPath     string `yaml:"landing_path"`
}

// Success describes the marker shown after a successful save.
type Success struct {
	Selector string `yaml:"selector"`
	Pattern  string `yaml:"pattern"`
}

// Resource is one CRUD resource of the panel.
type Resource struct {
	Key           string          `yaml:"key"`
	IndexPath     string          `yaml:"index_path"`
	CreatePath    string          `yaml:"create_path"`
	ListHeading   string          `yaml:"list_heading"`
	CreateHeading string          `yaml:"create_heading"`
	EditHeading   string          `yaml:"edit_heading"`
	SearchFields  []string        `yaml:"search_fields"`
	Create        schemas.Fixture `yaml:"create"`
	Edit          schemas.Fixture `yaml:"edit"`
}

// SearchSelectors returns the escaped selectors of the list view's search fields.
func (r Resource) SearchSelectors() []string {
	out := make([]string, len(r.SearchFields))
	for i, id := range r.SearchFields {
		out[i] = schemas.IDSelector(id)
	}
	return out
}

// Catalog is the full set of expected fixtures.
type Catalog struct {
	Login           Login      `yaml:"login"`
	Success         Success    `yaml:"success"`
	HeadingSelector string     `yaml:"heading_selector"`
	EditTrigger     string     `yaml:"edit_trigger"`
	DeleteTrigger   string     `yaml:"delete_trigger"`
	DeleteConfirm   string     `yaml:"delete_confirm"`
	EditSubmit      string     `yaml:"edit_submit"`
	Resources       []Resource `yaml:"resources"`

	successPattern *regexp.Regexp
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return parse(defaultCatalog, nil)
}

// Load returns the built-in catalog with the file at path applied on top.
// Top-level keys present in the file replace the built-in ones; resources
// are replaced by key. An empty path yields the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures file %s: %w", path, err)
	}
	cat, err := parse(defaultCatalog, data)
	if err != nil {
		return nil, fmt.Errorf("fixtures file %s: %w", path, err)
	}
	return cat, nil
}

func parse(base, override []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(base, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse built-in fixtures: %w", err)
	}
	if override != nil {
		baseResources := cat.Resources
		cat.Resources = nil
		if err := yaml.Unmarshal(override, &cat); err != nil {
			return nil, fmt.Errorf("failed to parse fixtures: %w", err)
		}
		cat.Resources = mergeResources(baseResources, cat.Resources)
	}
	if err := cat.validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

func mergeResources(base, override []Resource) []Resource {
	merged := append([]Resource(nil), base...)
	for _, r := range override {
		replaced := false
		for i := range merged {
			if merged[i].Key == r.Key {
				merged[i] = r
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, r)
		}
	}
	return merged
}

func (c *Catalog) validate() error {
	var problems []string
	if c.Login.Path == "" || c.Login.LandingPath == "" {
		problems = append(problems, "login.path and login.landing_path are required")
	}
	if c.Success.Selector == "" {
		problems = append(problems, "success.selector is required")
	}
	re, err := regexp.Compile(c.Success.Pattern)
	if err != nil {
		problems = append(problems, fmt.Sprintf("success.pattern: %v", err))
	}
	c.successPattern = re

	seen := make(map[string]bool)
	for i, r := range c.Resources {
		if r.Key == "" {
			problems = append(problems, fmt.Sprintf("resources[%d].key is required", i))
			continue
		}
		if seen[r.Key] {
			problems = append(problems, fmt.Sprintf("duplicate resource %q", r.Key))
		}
		seen[r.Key] = true
		if !strings.HasPrefix(r.IndexPath, "/") || !strings.HasPrefix(r.CreatePath, "/") {
			problems = append(problems, fmt.Sprintf("resource %q: index_path and create_path must start with /", r.Key))
		}
		for _, fx := range []schemas.Fixture{r.Create, r.Edit} {
			for _, f := range fx.Fields {
				switch f.Strategy {
				case "", schemas.StrategyTyped, schemas.StrategyAssign, schemas.StrategySelect:
				default:
					problems = append(problems, fmt.Sprintf("resource %q field %q: unknown strategy %q", r.Key, f.ID, f.Strategy))
				}
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid fixtures: %s", strings.Join(problems, "; "))
	}
	return nil
}

// SuccessPattern returns the compiled success marker pattern.
func (c *Catalog) SuccessPattern() *regexp.Regexp { return c.successPattern }

// Resource returns the resource with the given key.
func (c *Catalog) Resource(key string) (Resource, bool) {
	for _, r := range c.Resources {
		if r.Key == key {
			return r, true
		}
	}
	return Resource{}, false
}
