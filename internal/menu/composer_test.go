package menu

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/civreg/civreg/internal/rbac"
	"github.com/civreg/civreg/internal/shared"
)

func ptr[T any](v T) *T { return &v }

func registryCatalog() []Menu {
	return []Menu{
		{ID: 1, Name: "Dashboard", Route: "/dashboard", Icon: "home", OrderIndex: 1, PermissionCode: ptr(shared.PermViewDashboard)},
		{ID: 2, Name: "Citizens", Route: "/citizens", Icon: "people", OrderIndex: 2, PermissionCode: ptr(shared.PermViewCitizen)},
		{ID: 3, Name: "Add Citizen", Route: "/citizens/new", Icon: "plus", ParentID: ptr(int64(2)), OrderIndex: 1, PermissionCode: ptr(shared.PermCreateCitizen)},
		{ID: 4, Name: "Users", Route: "/users", Icon: "admin", OrderIndex: 3, PermissionCode: ptr(shared.PermViewUser)},
		{ID: 5, Name: "Notices", Route: "/notices", Icon: "bell", OrderIndex: 4},
	}
}

func TestComposeOfficerScenario(t *testing.T) {
	granted := rbac.NewPermissionSet(
		shared.PermViewCitizen,
		shared.PermCreateCitizen,
		shared.PermUpdateCitizen,
		shared.PermViewDashboard,
		shared.PermViewReports,
	)

	forest := Compose(registryCatalog(), granted)

	require.Len(t, forest, 3)
	require.Equal(t, "Dashboard", forest[0].Label)
	require.Equal(t, "Citizens", forest[1].Label)
	require.Equal(t, "Notices", forest[2].Label)

	citizens := forest[1]
	require.Len(t, citizens.Children, 1)
	require.Equal(t, "Add Citizen", citizens.Children[0].Label)
	require.Equal(t, "/citizens/new", citizens.Children[0].Route)
}

func TestComposeViewerScenario(t *testing.T) {
	granted := rbac.NewPermissionSet(shared.PermViewCitizen, shared.PermViewDashboard)

	forest := Compose(registryCatalog(), granted)

	require.Len(t, forest, 3)
	citizens := forest[1]
	require.Equal(t, "Citizens", citizens.Label)
	require.Empty(t, citizens.Children)
}

func TestComposeOrphanPromotedToRoot(t *testing.T) {
	// Granted for the child, not for the parent: the child must surface as
	// a root instead of vanishing.
	granted := rbac.NewPermissionSet(shared.PermCreateCitizen)

	forest := Compose(registryCatalog(), granted)

	require.Len(t, forest, 2)
	require.Equal(t, "Add Citizen", forest[0].Label)
	require.Equal(t, "Notices", forest[1].Label)
}

func TestComposeAlwaysVisibleWithoutPermission(t *testing.T) {
	forest := Compose(registryCatalog(), rbac.PermissionSet{})

	require.Len(t, forest, 1)
	require.Equal(t, "Notices", forest[0].Label)
	require.NotNil(t, forest[0].Children)
	require.Empty(t, forest[0].Children)
}

func TestComposeSortsSiblingsStably(t *testing.T) {
	catalog := []Menu{
		{ID: 1, Name: "B", OrderIndex: 2},
		{ID: 2, Name: "A", OrderIndex: 1},
		{ID: 3, Name: "C", OrderIndex: 2},
		{ID: 4, Name: "B1", ParentID: ptr(int64(1)), OrderIndex: 2},
		{ID: 5, Name: "B2", ParentID: ptr(int64(1)), OrderIndex: 1},
	}

	forest := Compose(catalog, rbac.PermissionSet{})

	require.Equal(t, []string{"A", "B", "C"}, []string{forest[0].Label, forest[1].Label, forest[2].Label})
	require.Equal(t, []string{"B2", "B1"}, []string{forest[1].Children[0].Label, forest[1].Children[1].Label})
}

func TestComposeDeterministic(t *testing.T) {
	granted := rbac.NewPermissionSet(shared.PermViewCitizen, shared.PermCreateCitizen, shared.PermViewDashboard)

	first := Compose(registryCatalog(), granted)
	second := Compose(registryCatalog(), granted)

	require.Equal(t, first, second)
}

func TestComposeArbitraryDepth(t *testing.T) {
	catalog := []Menu{
		{ID: 1, Name: "Root", OrderIndex: 1},
		{ID: 2, Name: "Child", ParentID: ptr(int64(1)), OrderIndex: 1},
		{ID: 3, Name: "Grandchild", ParentID: ptr(int64(2)), OrderIndex: 1},
	}

	forest := Compose(catalog, rbac.PermissionSet{})

	require.Len(t, forest, 1)
	require.Len(t, forest[0].Children, 1)
	require.Len(t, forest[0].Children[0].Children, 1)
	require.Equal(t, "Grandchild", forest[0].Children[0].Children[0].Label)
}
