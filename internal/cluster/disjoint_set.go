package cluster

// DisjointSet is an array-backed union-find over dense integer elements.
// Union is by size and Find halves paths as it walks.
type DisjointSet struct {
	parent []int
	size   []int
}

// NewDisjointSet returns a set with capacity hint n and no elements.
func NewDisjointSet(n int) *DisjointSet {
	return &DisjointSet{parent: make([]int, 0, n), size: make([]int, 0, n)}
}

// MakeSet adds a singleton element and returns its id.
func (d *DisjointSet) MakeSet() int {
	id := len(d.parent)
	d.parent = append(d.parent, id)
	d.size = append(d.size, 1)
	return id
}

// Len returns the number of elements.
func (d *DisjointSet) Len() int { return len(d.parent) }

// Find returns the representative of x.
func (d *DisjointSet) Find(x int) int {
	for d.parent[x] != x {
		d.parent[x] = d.parent[d.parent[x]]
		x = d.parent[x]
	}
	return x
}

// Union merges the sets containing a and b and returns the new root.
func (d *DisjointSet) Union(a, b int) int {
	ra, rb := d.Find(a), d.Find(b)
	if ra == rb {
		return ra
	}
	if d.size[ra] < d.size[rb] {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
	d.size[ra] += d.size[rb]
	return ra
}

// Connected reports whether a and b share a set.
func (d *DisjointSet) Connected(a, b int) bool { return d.Find(a) == d.Find(b) }
