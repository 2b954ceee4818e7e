package metasprite

// SpriteRenderer is the renderable component attached to content-bearing
// group nodes. Sprite names the packed sprite displayed at rest (frame 0 of
// the group's sprite list); animation rebinds it at playback time.
type SpriteRenderer struct {
	Sprite       string  `json:"sprite"`
	SortingLayer int     `json:"sortingLayer"`
	SortingOrder int     `json:"sortingOrder"`
	PivotX       float64 `json:"pivotX"`
	PivotY       float64 `json:"pivotY"`
}

// Animator is the motion-graph component bound to the scene root.
type Animator struct {
	Controller string `json:"controller"` // graph asset path
}

// nodeIDCounter is a plain counter (no atomic — one import runs at a time).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// Node is a scene node produced by the prefab stage. A single flat struct
// carries the transform and the optional components; group nodes without
// content layers act as plain containers.
type Node struct {
	ID   uint32
	Name string

	Parent   *Node
	children []*Node

	// Transform (local). Z is the depth-ordering key derived from the
	// group's sibling index.
	X, Y, Z float64

	// Alpha is the playback opacity in [0, 1]. The Player drives it
	// during state crossfades.
	Alpha float64

	// Components (nil when absent).
	Renderer *SpriteRenderer
	Animator *Animator

	disposed bool
}

// NewNode creates a node with the given name and no components.
func NewNode(name string) *Node {
	return &Node{ID: nextNodeID(), Name: name, Alpha: 1}
}

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("metasprite: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("metasprite: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.removeChildByPtr(n)
	n.Parent = nil
}

// Children returns the child list. The returned slice MUST NOT be mutated
// by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// Find returns the descendant at the slash-separated path relative to this
// node, or nil. An empty path returns the node itself.
func (n *Node) Find(path string) *Node {
	if path == "" {
		return n
	}
	cur := n
	start := 0
	for i := 0; i <= len(path); i++ {
		if i < len(path) && path[i] != '/' {
			continue
		}
		seg := path[start:i]
		start = i + 1
		next := (*Node)(nil)
		for _, c := range cur.children {
			if c.Name == seg {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	n.Renderer = nil
	n.Animator = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing
// child.Parent. Uses copy+nil to avoid retaining a dangling pointer in the
// backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}
