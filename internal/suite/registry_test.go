// internal/suite/registry_test.go
package suite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/lispico-e2e/internal/config"
	"github.com/xkilldash9x/lispico-e2e/internal/fixtures"
	"github.com/xkilldash9x/lispico-e2e/internal/scenario"
	"github.com/xkilldash9x/lispico-e2e/internal/waiter"
)

func TestRegistryAdd(t *testing.T) {
	tests := []struct {
		name    string
		groups  []Group
		wantErr string
	}{
		{"unnamed group", []Group{{}}, "group name is required"},
		{"duplicate group", []Group{{Name: "a"}, {Name: "a"}}, `group "a" registered twice`},
		{"unnamed entry", []Group{{Name: "a", Entries: []Entry{{}}}}, "entry name is required"},
		{"duplicate entry", []Group{{Name: "a", Entries: []Entry{{Name: "x"}, {Name: "x"}}}}, `entry "x" registered twice`},
		{"forward dependency", []Group{{Name: "a", Entries: []Entry{
			{Name: "edit", DependsOn: []string{"create"}},
			{Name: "create"},
		}}}, `depends on "create", which is not declared before it`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			var err error
			for _, g := range tt.groups {
				if err = r.Add(g); err != nil {
					break
				}
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRegistrySelect(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"login", "admin_users", "members"} {
		require.NoError(t, r.Add(Group{Name: name, Entries: []Entry{{Name: "x"}}}))
	}

	sel, err := r.Select([]string{"members", "login"})
	require.NoError(t, err)
	require.Len(t, sel.Groups(), 2)
	assert.Equal(t, "members", sel.Groups()[0].Name)
	assert.Equal(t, "login", sel.Groups()[1].Name)
	assert.Equal(t, 2, sel.Len())

	_, err = r.Select([]string{"orders"})
	assert.EqualError(t, err, `unknown scenario group "orders"`)
}

func TestDefaultRegistry(t *testing.T) {
	cat, err := fixtures.Default()
	require.NoError(t, err)
	cfg := config.NewDefaultConfig()
	w := waiter.New(cfg.Wait(), zaptest.NewLogger(t))
	b := scenario.NewBuilder(cfg.Target().BaseURL, cat, w, cfg.Wait().NavigationTimeout)

	t.Run("default groups", func(t *testing.T) {
		reg, err := DefaultRegistry(b, cat, cfg)
		require.NoError(t, err)

		var names []string
		for _, g := range reg.Groups() {
			for _, e := range g.Entries {
				names = append(names, g.Name+"/"+e.Name)
			}
		}
		assert.Equal(t, []string{
			"login/login", "login/login_rejected",
			"admin_users/list", "admin_users/create", "admin_users/edit", "admin_users/delete",
			"members/list", "members/create", "members/edit", "members/delete",
		}, names)

		login := reg.Groups()[0]
		assert.True(t, login.Entries[0].Unauthenticated)
		assert.Equal(t, "login_rejected", login.Entries[1].Sequence.Name)

		members := reg.Groups()[2]
		assert.Equal(t, []string{"create"}, members.Entries[2].DependsOn)
		assert.Equal(t, []string{"create"}, members.Entries[3].DependsOn)
		assert.False(t, members.Entries[0].Unauthenticated)
	})

	t.Run("narrowed groups without negative login", func(t *testing.T) {
		cfg := config.NewDefaultConfig()
		cfg.SetSuiteGroups([]string{"login", "members"})
		cfg.SuiteCfg.NegativeLogin = false

		reg, err := DefaultRegistry(b, cat, cfg)
		require.NoError(t, err)
		require.Len(t, reg.Groups(), 2)
		assert.Len(t, reg.Groups()[0].Entries, 1)
		assert.Equal(t, "members", reg.Groups()[1].Name)
	})

	t.Run("unknown group", func(t *testing.T) {
		cfg := config.NewDefaultConfig()
		cfg.SetSuiteGroups([]string{"orders"})
		_, err := DefaultRegistry(b, cat, cfg)
		assert.Error(t, err)
	})
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.SuiteCfg.ScenarioTimeout = 2 * time.Minute
	cfg.DiagnosticsCfg.Dir = t.TempDir()

	opts := OptionsFromConfig(cfg, scenario.Sequence{Name: "login"}, zaptest.NewLogger(t))
	assert.Equal(t, cfg.Target().BaseURL, opts.BaseURL)
	assert.Equal(t, config.AuthShared, opts.Auth)
	assert.Equal(t, 2*time.Minute, opts.ScenarioTimeout)
	assert.Equal(t, 60*time.Second, opts.LoginTimeout)
	assert.NotNil(t, opts.Diagnostics)

	cfg.DiagnosticsCfg.Enabled = false
	assert.Nil(t, OptionsFromConfig(cfg, scenario.Sequence{}, zaptest.NewLogger(t)).Diagnostics)
}
