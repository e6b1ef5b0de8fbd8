package scene

import "github.com/carmandale/previewBuilder/pkg/math3d"

// Node is one entry in the asset's node arena. Transforms are either
// an explicit matrix or a TRS triple, never both.
type Node struct {
	Name        string
	Translation math3d.Vec3
	Rotation    math3d.Quat
	Scale       math3d.Vec3
	Matrix      math3d.Mat4
	HasMatrix   bool
	Mesh        int // index into Asset.Meshes, -1 when none
	Camera      int // index into the document's cameras, -1 when none
	Children    []int
	Parent      int // -1 at roots
}

// Local returns the node's local transform.
func (n *Node) Local() math3d.Mat4 {
	if n.HasMatrix {
		return n.Matrix
	}
	return math3d.Compose(n.Translation, n.Rotation, n.Scale)
}

// walkFrame pairs a node index with its accumulated parent transform
// during arena traversal.
type walkFrame struct {
	node   int
	parent math3d.Mat4
}

// worldTransforms computes the world transform of every node reachable
// from the given roots, each seeded with pre. Unreachable arena slots
// are left zero. Traversal uses an explicit stack so depth is bounded
// by the arena, not the goroutine stack.
func worldTransforms(nodes []Node, roots []int, pre math3d.Mat4) []math3d.Mat4 {
	world := make([]math3d.Mat4, len(nodes))
	stack := make([]walkFrame, 0, len(roots))
	for _, r := range roots {
		stack = append(stack, walkFrame{node: r, parent: pre})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		w := f.parent.Mul(nodes[f.node].Local())
		world[f.node] = w
		for _, c := range nodes[f.node].Children {
			stack = append(stack, walkFrame{node: c, parent: w})
		}
	}
	return world
}

// reachable returns the set of node indices reachable from roots.
func reachable(nodes []Node, roots []int) []bool {
	seen := make([]bool, len(nodes))
	stack := append([]int(nil), roots...)
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[i] {
			continue
		}
		seen[i] = true
		stack = append(stack, nodes[i].Children...)
	}
	return seen
}
