package registry

// dependencyGraph tracks which plugin depends on which. Nodes keep their
// insertion order so every traversal is deterministic and follows
// registration order.
type dependencyGraph struct {
	order []string
	deps  map[string][]string
}

func newDependencyGraph() *dependencyGraph {
	return &dependencyGraph{deps: make(map[string][]string)}
}

func (g *dependencyGraph) addNode(name string) {
	if _, ok := g.deps[name]; ok {
		return
	}
	g.order = append(g.order, name)
	g.deps[name] = nil
}

func (g *dependencyGraph) addEdge(dependent, dependency string) {
	g.addNode(dependent)
	g.addNode(dependency)
	g.deps[dependent] = append(g.deps[dependent], dependency)
}

// cycle returns one dependency cycle, or nil when the graph is acyclic.
// Nodes for which skip reports true are left out, together with their edges.
// A nil skip keeps every node.
func (g *dependencyGraph) cycle(skip func(string) bool) []string {
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[string]int, len(g.order))
	var path []string

	var visit func(node string) []string
	visit = func(node string) []string {
		state[node] = active
		path = append(path, node)
		for _, dep := range g.deps[node] {
			if skipped(skip, dep) {
				continue
			}
			switch state[dep] {
			case active:
				for i := len(path) - 1; i >= 0; i-- {
					if path[i] == dep {
						return append([]string(nil), path[i:]...)
					}
				}
			case unvisited:
				if found := visit(dep); found != nil {
					return found
				}
			}
		}
		path = path[:len(path)-1]
		state[node] = done
		return nil
	}

	for _, node := range g.order {
		if state[node] == unvisited && !skipped(skip, node) {
			if found := visit(node); found != nil {
				return found
			}
		}
	}
	return nil
}

// sorted returns every node not skipped with dependencies ahead of their
// dependents. Independent nodes keep insertion order.
func (g *dependencyGraph) sorted(skip func(string) bool) ([]string, error) {
	if c := g.cycle(skip); c != nil {
		return nil, ErrCircularDependency{Cycle: c}
	}
	placed := make(map[string]bool, len(g.order))
	result := make([]string, 0, len(g.order))

	var place func(node string)
	place = func(node string) {
		if placed[node] || skipped(skip, node) {
			return
		}
		placed[node] = true
		for _, dep := range g.deps[node] {
			place(dep)
		}
		result = append(result, node)
	}
	for _, node := range g.order {
		place(node)
	}
	return result, nil
}

func skipped(skip func(string) bool, node string) bool {
	return skip != nil && skip(node)
}
