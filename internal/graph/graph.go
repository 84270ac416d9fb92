// Package graph provides stateless helpers over dependency edges between
// sibling items. Nodes are plain ids; edges point from an item to the ids it
// depends on. All functions take their inputs by value and keep no state.
package graph

// Ready reports whether every id in deps is in the completed set. An id that
// does not resolve is never satisfied.
func Ready(deps []string, completed map[string]bool) bool {
	for _, dep := range deps {
		if !completed[dep] {
			return false
		}
	}
	return true
}

// WaitingOn returns the ids in deps that are not yet completed, in order.
func WaitingOn(deps []string, completed map[string]bool) []string {
	var waiting []string
	for _, dep := range deps {
		if !completed[dep] {
			waiting = append(waiting, dep)
		}
	}
	return waiting
}

// Dangling returns the ids in deps that are not members of scope, skipping
// self, in order of appearance.
func Dangling(self string, deps []string, scope map[string]bool) []string {
	var out []string
	for _, dep := range deps {
		if dep == self {
			continue
		}
		if !scope[dep] {
			out = append(out, dep)
		}
	}
	return out
}

// FindCycles runs a depth-first traversal from each node in nodes order and
// reports every back edge as a cycle. A node is "visited" once fully or
// partially explored and "on stack" while it sits on the active path; only
// reaching an on-stack node indicates a cycle, so shared acyclic targets are
// not misreported. Edges to ids outside nodes are ignored. Each cycle is the
// active path from the revisited node back to itself, e.g. [a b c a]; a
// self-loop is reported as [a a].
func FindCycles(nodes []string, edges map[string][]string) [][]string {
	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n] = true
	}

	visited := make(map[string]bool, len(nodes))
	onStack := make(map[string]bool, len(nodes))
	var path []string
	var cycles [][]string

	var visit func(n string)
	visit = func(n string) {
		visited[n] = true
		onStack[n] = true
		path = append(path, n)

		for _, next := range edges[n] {
			if !known[next] {
				continue
			}
			if onStack[next] {
				cycles = append(cycles, cycleFrom(path, next))
				continue
			}
			if !visited[next] {
				visit(next)
			}
		}

		path = path[:len(path)-1]
		onStack[n] = false
	}

	for _, n := range nodes {
		if !visited[n] {
			visit(n)
		}
	}
	return cycles
}

func cycleFrom(path []string, start string) []string {
	for i, n := range path {
		if n == start {
			cycle := make([]string, 0, len(path)-i+1)
			cycle = append(cycle, path[i:]...)
			return append(cycle, start)
		}
	}
	return []string{start, start}
}

// TopologicalOrder sorts nodes so that every node follows the nodes it
// depends on, using Kahn's algorithm and keeping input order among peers.
// The second return value is false when the edges contain a cycle; the
// order then holds only the nodes that could be placed.
func TopologicalOrder(nodes []string, edges map[string][]string) ([]string, bool) {
	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n] = true
	}

	inDegree := make(map[string]int, len(nodes))
	dependents := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		for _, dep := range edges[n] {
			if !known[dep] || dep == n {
				if dep == n {
					inDegree[n]++
				}
				continue
			}
			dependents[dep] = append(dependents[dep], n)
			inDegree[n]++
		}
	}

	var queue []string
	for _, n := range nodes {
		if inDegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	order := make([]string, 0, len(nodes))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		for _, next := range dependents[n] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	return order, len(order) == len(nodes)
}
