package tree

import (
	"iter"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/datatree/dataset"
	"github.com/arloliu/datatree/errs"
)

// Node is a handle to one node of a Tree.
type Node struct {
	tree *Tree
	id   NodeID
}

func (n Node) data() *node {
	return &n.tree.nodes[n.id]
}

// IsZero reports whether n is the zero handle.
func (n Node) IsZero() bool {
	return n.tree == nil
}

// ID returns the arena index of n.
func (n Node) ID() NodeID {
	return n.id
}

// Tree returns the tree that owns n.
func (n Node) Tree() *Tree {
	return n.tree
}

// IsRoot reports whether n is the root of its tree.
func (n Node) IsRoot() bool {
	return n.id == 0
}

// Name returns the node's name; the root's name is empty.
func (n Node) Name() string {
	return n.data().name
}

// Dataset returns the node's own dataset. Callers must not modify it while
// the tree is being written.
func (n Node) Dataset() *dataset.Dataset {
	return n.data().ds
}

// Parent returns the parent node, or false at the root.
func (n Node) Parent() (Node, bool) {
	p := n.data().parent
	if p == noParent {
		return Node{}, false
	}

	return Node{tree: n.tree, id: p}, true
}

// Children returns the direct children in insertion order.
func (n Node) Children() []Node {
	ids := n.data().children
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = Node{tree: n.tree, id: id}
	}

	return out
}

// Child returns the direct child called name.
func (n Node) Child(name string) (Node, bool) {
	for _, id := range n.data().children {
		if n.tree.nodes[id].name == name {
			return Node{tree: n.tree, id: id}, true
		}
	}

	return Node{}, false
}

// Ancestors yields the parent, grandparent and so on up to the root.
func (n Node) Ancestors() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		cur := n
		for {
			p, ok := cur.Parent()
			if !ok || !yield(p) {
				return
			}
			cur = p
		}
	}
}

// Subtree yields n and all its descendants in pre-order. The traversal is
// lazy: nodes are visited as the caller pulls them.
func (n Node) Subtree() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		stack := []NodeID{n.id}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(Node{tree: n.tree, id: id}) {
				return
			}
			children := n.tree.nodes[id].children
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, children[i])
			}
		}
	}
}

// Path returns the absolute path of n: "/" for the root, "/a/b" below it.
func (n Node) Path() string {
	if n.IsRoot() {
		return Separator
	}

	return Separator + n.relativeTo(n.tree.Root())
}

// RelativeTo returns the slash-joined path from ancestor down to n, without a
// leading slash. It is empty when n is ancestor.
//
// Returns errs.ErrNotAncestor if ancestor is not n or one of its ancestors.
func (n Node) RelativeTo(ancestor Node) (string, error) {
	if ancestor.tree != n.tree {
		return "", errors.Wrap(errs.ErrNotAncestor, "nodes belong to different trees")
	}
	if n == ancestor {
		return "", nil
	}
	for a := range n.Ancestors() {
		if a == ancestor {
			return n.relativeTo(ancestor), nil
		}
	}

	return "", errors.Wrapf(errs.ErrNotAncestor, "%q is not above %q", ancestor.Path(), n.Path())
}

// relativeTo assumes ancestor is n or above it.
func (n Node) relativeTo(ancestor Node) string {
	var names []string
	for cur := n; cur != ancestor; {
		names = append(names, cur.Name())
		p, ok := cur.Parent()
		if !ok {
			break
		}
		cur = p
	}
	slices.Reverse(names)

	return strings.Join(names, Separator)
}

// ToDataset materializes the node's dataset as a deep copy.
//
// With inherit set, coordinate variables of ancestors are merged in, nearest
// ancestor first; names already defined by the node or a nearer ancestor are
// not overridden.
func (n Node) ToDataset(inherit bool) *dataset.Dataset {
	out := n.Dataset().Clone()
	if !inherit {
		return out
	}

	for a := range n.Ancestors() {
		for name, v := range a.Dataset().Coords {
			if _, _, ok := out.Variable(name); ok {
				continue
			}
			out.Coords[name] = v.Clone()
		}
	}

	return out
}
