package dag

// Edge is a directed connection between two node identifiers.
type Edge struct {
	From string
	To   string
}

// Adjacency maps every node identifier to the ordered list of identifiers
// it has outgoing edges to. Successor order is edge input order.
type Adjacency map[string][]string

// Build constructs the adjacency structure for the given node identifiers
// and edges. Every identifier becomes a key, so nodes without outgoing
// edges map to an empty successor list. An edge is kept only when both its
// endpoints are present among the identifiers; anything else is dropped
// without error. Duplicate identifiers collapse into a single key, the
// last occurrence winning.
func Build(nodes []string, edges []Edge) Adjacency {
	adj := make(Adjacency, len(nodes))
	for _, id := range nodes {
		adj[id] = nil
	}
	for _, e := range edges {
		if _, ok := adj[e.From]; !ok {
			continue
		}
		if _, ok := adj[e.To]; !ok {
			continue
		}
		adj[e.From] = append(adj[e.From], e.To)
	}
	return adj
}

// EdgeCount returns the number of edges retained in the structure. This is
// the filtered count; edges dropped by Build are not represented.
func (a Adjacency) EdgeCount() int {
	total := 0
	for _, succ := range a {
		total += len(succ)
	}
	return total
}
