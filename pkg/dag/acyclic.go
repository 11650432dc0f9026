package dag

// Traversal colors. A node is unvisited until first entered, in progress
// while any of its descendants are still being explored, and done once the
// whole subtree below it is resolved.
const (
	unvisited = iota
	inProgress
	done
)

// frame is one entry of the explicit traversal stack. next indexes the
// first successor of id that has not been explored yet.
type frame struct {
	id   string
	next int
}

// IsAcyclic reports whether the graph described by adj contains no directed
// cycle. The nodes slice supplies the seed order: every identifier still
// unvisited when reached starts a new traversal, which covers disconnected
// components. An empty node set or an edge-free adjacency structure is
// acyclic by convention, without traversal.
//
// The check short-circuits on the first back-edge, an edge leading to a
// node that is still in progress on the active exploration path. Successors
// are explored in edge input order; that order decides which back-edge is
// seen first but never changes the verdict. The traversal runs on an
// explicit stack, so deep graphs cost heap, not call stack.
func IsAcyclic(nodes []string, adj Adjacency) bool {
	if len(nodes) == 0 || adj.EdgeCount() == 0 {
		return true
	}

	color := make(map[string]int, len(adj))
	stack := make([]frame, 0, len(adj))

	for _, seed := range nodes {
		if color[seed] != unvisited {
			continue
		}
		color[seed] = inProgress
		stack = append(stack, frame{id: seed})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			succ := adj[top.id]

			if top.next == len(succ) {
				color[top.id] = done
				stack = stack[:len(stack)-1]
				continue
			}

			child := succ[top.next]
			top.next++

			switch color[child] {
			case inProgress:
				return false // back-edge
			case unvisited:
				color[child] = inProgress
				stack = append(stack, frame{id: child})
			}
		}
	}

	return true
}
