// internal/suite/registry.go
package suite

import (
	"fmt"

	"github.com/xkilldash9x/lispico-e2e/api/schemas"
	"github.com/xkilldash9x/lispico-e2e/internal/config"
	"github.com/xkilldash9x/lispico-e2e/internal/fixtures"
	"github.com/xkilldash9x/lispico-e2e/internal/scenario"
)

// Entry is one registered scenario.
type Entry struct {
	Name     string
	Sequence scenario.Sequence
	// DependsOn names earlier entries of the same group whose side effects
	// this entry needs. When one of them does not pass, the entry is skipped.
	DependsOn []string
	// Unauthenticated entries start on a fresh page without any login state
	// and run under the login time guard.
	Unauthenticated bool
}

// Group is an ordered list of entries, usually one per resource.
type Group struct {
	Name    string
	Entries []Entry
}

// Registry holds the groups of a run in declared order.
type Registry struct {
	groups []Group
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends g. Group names must be unique, entry names unique within the
// group, and dependencies must point at entries declared before.
func (r *Registry) Add(g Group) error {
	if g.Name == "" {
		return fmt.Errorf("group name is required")
	}
	for _, existing := range r.groups {
		if existing.Name == g.Name {
			return fmt.Errorf("group %q registered twice", g.Name)
		}
	}
	seen := make(map[string]bool, len(g.Entries))
	for _, e := range g.Entries {
		if e.Name == "" {
			return fmt.Errorf("group %q: entry name is required", g.Name)
		}
		if seen[e.Name] {
			return fmt.Errorf("group %q: entry %q registered twice", g.Name, e.Name)
		}
		for _, dep := range e.DependsOn {
			if !seen[dep] {
				return fmt.Errorf("group %q: entry %q depends on %q, which is not declared before it", g.Name, e.Name, dep)
			}
		}
		seen[e.Name] = true
	}
	r.groups = append(r.groups, g)
	return nil
}

// Groups returns the registered groups in order.
func (r *Registry) Groups() []Group {
	return r.groups
}

// Len returns the number of entries across all groups.
func (r *Registry) Len() int {
	n := 0
	for _, g := range r.groups {
		n += len(g.Entries)
	}
	return n
}

// Select returns a registry with only the named groups, in the order given.
func (r *Registry) Select(names []string) (*Registry, error) {
	out := NewRegistry()
	for _, name := range names {
		g, ok := r.group(name)
		if !ok {
			return nil, fmt.Errorf("unknown scenario group %q", name)
		}
		if err := out.Add(g); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Registry) group(name string) (Group, bool) {
	for _, g := range r.groups {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}

// LoginGroup is the name of the group holding the login scenarios.
const LoginGroup = "login"

// DefaultRegistry registers the login group and one group per catalog
// resource, then narrows it to the groups named in the suite configuration.
func DefaultRegistry(b *scenario.Builder, catalog *fixtures.Catalog, cfg config.Interface) (*Registry, error) {
	target := cfg.Target()
	all := NewRegistry()

	login := Group{Name: LoginGroup, Entries: []Entry{{
		Name:            "login",
		Sequence:        b.Login(schemas.Credential{Email: target.Email, Password: target.Password}),
		Unauthenticated: true,
	}}}
	if cfg.Suite().NegativeLogin {
		login.Entries = append(login.Entries, Entry{
			Name:            "login_rejected",
			Sequence:        b.LoginRejected(schemas.Credential{Email: target.Email, Password: target.WrongPassword}),
			Unauthenticated: true,
		})
	}
	if err := all.Add(login); err != nil {
		return nil, err
	}

	for _, res := range catalog.Resources {
		g := Group{Name: res.Key, Entries: []Entry{
			{Name: "list", Sequence: b.ListView(res)},
			{Name: "create", Sequence: b.Create(res)},
			{Name: "edit", Sequence: b.Edit(res), DependsOn: []string{"create"}},
			{Name: "delete", Sequence: b.Delete(res), DependsOn: []string{"create"}},
		}}
		if err := all.Add(g); err != nil {
			return nil, err
		}
	}

	groups := cfg.Suite().Groups
	if len(groups) == 0 {
		return all, nil
	}
	return all.Select(groups)
}
