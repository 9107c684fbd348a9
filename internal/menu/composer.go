package menu

import (
	"sort"

	"github.com/civreg/civreg/internal/rbac"
)

// Compose filters the catalog by the granted permission codes and assembles
// the ordered navigation forest.
//
// Children are attached to their parent only when the parent itself passed
// the permission filter. A child whose parent was filtered out is promoted
// to a root node instead of being dropped, so a granted sub-item never
// disappears just because its parent entry is hidden.
func Compose(catalog []Menu, granted rbac.PermissionSet) []*Node {
	visible := make([]Menu, 0, len(catalog))
	nodes := make(map[int64]*Node, len(catalog))
	for _, entry := range catalog {
		if entry.PermissionCode != nil && !granted.Has(*entry.PermissionCode) {
			continue
		}
		visible = append(visible, entry)
		nodes[entry.ID] = &Node{
			ID:         entry.ID,
			Label:      entry.Name,
			Route:      entry.Route,
			Icon:       entry.Icon,
			OrderIndex: entry.OrderIndex,
			Children:   []*Node{},
		}
	}

	var roots []*Node
	for _, entry := range visible {
		node := nodes[entry.ID]
		if entry.ParentID != nil {
			if parent, ok := nodes[*entry.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	sortForest(roots)
	return roots
}

// sortForest orders siblings ascending by order index at every depth. The
// sort is stable so catalog order breaks ties deterministically.
func sortForest(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].OrderIndex < nodes[j].OrderIndex
	})
	for _, node := range nodes {
		sortForest(node.Children)
	}
}
