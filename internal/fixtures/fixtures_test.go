// internal/fixtures/fixtures_test.go
package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/lispico-e2e/api/schemas"
)

func TestDefault(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "/admin/login", cat.Login.Path)
	assert.Equal(t, "りすぴこ", cat.Login.Heading)
	assert.Equal(t, "/admin", cat.Login.LandingPath)
	assert.Equal(t, "#successMessage h4", cat.Success.Selector)
	assert.True(t, cat.SuccessPattern().MatchString("Update OK"))
	assert.Equal(t, `td a[href="#"]`, cat.DeleteTrigger)

	admins, ok := cat.Resource("admin_users")
	require.True(t, ok)
	assert.Equal(t, "Admin Users", admins.ListHeading)
	assert.Equal(t, "Admin Users - Create New", admins.CreateHeading)
	assert.Equal(t, []string{`#q\[id\]`, `#q\[last_name\]`, `#q\[first_name\]`, `#q\[login_enable\]`}, admins.SearchSelectors())

	lastName, _ := admins.Create.Value("last_name")
	assert.Equal(t, "Belo", lastName)
	loginEnable := admins.Create.Fields[3]
	assert.Equal(t, "login_enable", loginEnable.ID)
	assert.Equal(t, schemas.StrategySelect, loginEnable.Strategy)
	editLast, _ := admins.Edit.Value("last_name")
	assert.Equal(t, "Wayne", editLast)

	members, ok := cat.Resource("members")
	require.True(t, ok)
	assert.Len(t, members.SearchFields, 6)
	assert.Equal(t, "Members - Edit", members.EditHeading)
	_, hasEditPassword := members.Edit.Value("password_for_edit_confirmation")
	assert.True(t, hasEditPassword)
	kana, _ := members.Create.Value("last_name_kana")
	assert.Equal(t, "ベロ", kana)

	_, ok = cat.Resource("orders")
	assert.False(t, ok)
}

func TestLoad_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
success:
  selector: "#flash h4"
  pattern: "^Saved"
resources:
  - key: members
    index_path: /admin/members
    create_path: /admin/members/new
    list_heading: Members
    create_heading: Members - Create New
    edit_heading: Members - Edit
    search_fields: [q[id]]
`), 0o600))

	cat, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "#flash h4", cat.Success.Selector)
	assert.True(t, cat.SuccessPattern().MatchString("Saved!"))
	assert.False(t, cat.SuccessPattern().MatchString("OK"))
	assert.Equal(t, "/admin/login", cat.Login.Path, "keys absent from the file keep built-in values")

	require.Len(t, cat.Resources, 2)
	members, _ := cat.Resource("members")
	assert.Equal(t, "/admin/members/new", members.CreatePath)
	assert.Equal(t, []string{"q[id]"}, members.SearchFields)
	admins, _ := cat.Resource("admin_users")
	assert.Equal(t, "/admin/admin_users", admins.IndexPath)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read fixtures file")
	})

	t.Run("invalid content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
success:
  pattern: "("
resources:
  - key: admin_users
    index_path: admin_users
    create_path: /admin/admin_users/create
    create:
      fields:
        - { id: email, value: x, strategy: paste }
`), 0o600))

		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "success.pattern")
		assert.Contains(t, err.Error(), "must start with /")
		assert.Contains(t, err.Error(), `unknown strategy "paste"`)
	})

	t.Run("empty path means defaults", func(t *testing.T) {
		cat, err := Load("")
		require.NoError(t, err)
		assert.Len(t, cat.Resources, 2)
	})
}
