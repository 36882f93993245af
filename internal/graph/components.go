package graph

// Component represents a connected component of resources.
type Component struct {
	Tables []string
}

// FindComponents detects connected components using undirected BFS.
// Components and their members follow declaration order.
func FindComponents(v *View) []Component {
	visited := make(map[string]bool)
	var components []Component

	for _, name := range v.Names() {
		if visited[name] {
			continue
		}
		comp := bfs(v, name, visited)
		components = append(components, Component{Tables: comp})
	}

	return components
}

// Connected reports whether a and b belong to the same component.
func Connected(v *View, a, b string) bool {
	if _, ok := v.Resource(a); !ok {
		return false
	}
	for _, t := range bfs(v, a, make(map[string]bool)) {
		if t == b {
			return true
		}
	}
	return false
}

func bfs(v *View, start string, visited map[string]bool) []string {
	queue := []string{start}
	visited[start] = true
	var result []string

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range v.Neighbors(node) {
			if !visited[neighbor] {
				visited[neighbor] = true
				queue = append(queue, neighbor)
			}
		}
	}

	return result
}
