// Package tree implements the data tree: a rooted hierarchy of named nodes,
// each owning one dataset.
//
// Nodes live in an arena owned by the Tree and refer to each other by index,
// so a child's link to its parent is a plain integer rather than an owning
// reference. Node is a small value handle; two handles are the same node
// exactly when they compare equal with ==.
//
//	t := tree.New(rootDS)
//	a, _ := t.Add("/group_a", dsA)
//	for node := range t.Subtree() {
//	    fmt.Println(node.Path())
//	}
package tree

import (
	"iter"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/datatree/dataset"
	"github.com/arloliu/datatree/errs"
)

// NodeID indexes a node within its tree's arena.
type NodeID int32

const noParent NodeID = -1

// Separator joins node names into paths.
const Separator = "/"

type node struct {
	name     string
	parent   NodeID
	children []NodeID
	ds       *dataset.Dataset
	// implicit marks intermediate nodes created by Add; only those can be
	// filled later.
	implicit bool
}

// Tree owns every node and its dataset. The root is always node 0.
type Tree struct {
	nodes []node
}

// New creates a tree whose root holds ds. A nil ds becomes an empty dataset.
func New(ds *dataset.Dataset) *Tree {
	if ds == nil {
		ds = dataset.New()
	}

	return &Tree{nodes: []node{{parent: noParent, ds: ds}}}
}

// Root returns the root node.
func (t *Tree) Root() Node {
	return Node{tree: t, id: 0}
}

// Len returns the number of nodes, root included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Add creates the node at path (for example "/a/b") holding ds, creating any
// missing intermediate nodes with empty datasets.
//
// Adding at an existing path fills the dataset of a node that Add created as
// an intermediate and that is still empty; otherwise it returns
// errs.ErrDuplicateNode. A node name may not equal a variable name of its
// parent's dataset (errs.ErrDuplicateName).
func (t *Tree) Add(path string, ds *dataset.Dataset) (Node, error) {
	names, err := splitPath(path)
	if err != nil {
		return Node{}, err
	}
	if len(names) == 0 {
		return Node{}, errors.Wrap(errs.ErrDuplicateNode, "root already exists")
	}
	if ds == nil {
		ds = dataset.New()
	}

	cur := t.Root()
	depth := 0
	for ; depth < len(names); depth++ {
		child, ok := cur.Child(names[depth])
		if !ok {
			break
		}
		if depth == len(names)-1 {
			n := &t.nodes[child.id]
			if !n.implicit || n.ds.Len() != 0 || len(n.ds.Attrs) != 0 {
				return Node{}, errors.Wrapf(errs.ErrDuplicateNode, "%q", path)
			}
			if err := t.checkVariables(child.id, ds); err != nil {
				return Node{}, err
			}
			n.ds = ds
			n.implicit = false

			return child, nil
		}
		cur = child
	}

	// Nothing is created when the first missing name clashes.
	missing := names[depth:]
	if err := t.checkChildName(cur.id, missing[0]); err != nil {
		return Node{}, err
	}
	for _, name := range missing[:len(missing)-1] {
		cur = t.addChild(cur.id, name, dataset.New())
		t.nodes[cur.id].implicit = true
	}

	return t.addChild(cur.id, missing[len(missing)-1], ds), nil
}

// AddChild creates a direct child of parent.
func (t *Tree) AddChild(parent Node, name string, ds *dataset.Dataset) (Node, error) {
	if parent.tree != t {
		return Node{}, errors.Wrap(errs.ErrNodeNotFound, "parent belongs to another tree")
	}
	if err := checkName(name); err != nil {
		return Node{}, err
	}
	if _, ok := parent.Child(name); ok {
		return Node{}, errors.Wrapf(errs.ErrDuplicateNode, "%q under %q", name, parent.Path())
	}
	if err := t.checkChildName(parent.id, name); err != nil {
		return Node{}, err
	}
	if ds == nil {
		ds = dataset.New()
	}

	return t.addChild(parent.id, name, ds), nil
}

func (t *Tree) addChild(parent NodeID, name string, ds *dataset.Dataset) Node {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, node{name: name, parent: parent, ds: ds})
	t.nodes[parent].children = append(t.nodes[parent].children, id)

	return Node{tree: t, id: id}
}

// checkChildName rejects a child name that is a variable of the parent's dataset.
func (t *Tree) checkChildName(parent NodeID, name string) error {
	if _, _, ok := t.nodes[parent].ds.Variable(name); ok {
		return errors.Wrapf(errs.ErrDuplicateName, "node %q clashes with a variable of %q",
			name, Node{tree: t, id: parent}.Path())
	}

	return nil
}

// checkVariables rejects a dataset for node id that has a variable named like
// one of the node's children.
func (t *Tree) checkVariables(id NodeID, ds *dataset.Dataset) error {
	for _, child := range t.nodes[id].children {
		if _, _, ok := ds.Variable(t.nodes[child].name); ok {
			return errors.Wrapf(errs.ErrDuplicateName, "variable %q clashes with a child of %q",
				t.nodes[child].name, Node{tree: t, id: id}.Path())
		}
	}

	return nil
}

// CheckNames returns errs.ErrDuplicateName when any node has a variable named
// like one of its children. Add and AddChild prevent this, but datasets stay
// mutable after they join the tree.
func (t *Tree) CheckNames() error {
	for n := range t.Subtree() {
		if err := t.checkVariables(n.id, n.Dataset()); err != nil {
			return err
		}
	}

	return nil
}

// Lookup finds the node at an absolute path; "/" is the root.
func (t *Tree) Lookup(path string) (Node, bool) {
	names, err := splitPath(path)
	if err != nil {
		return Node{}, false
	}

	cur := t.Root()
	for _, name := range names {
		child, ok := cur.Child(name)
		if !ok {
			return Node{}, false
		}
		cur = child
	}

	return cur, true
}

// Subtree yields every node in pre-order, root first.
func (t *Tree) Subtree() iter.Seq[Node] {
	return t.Root().Subtree()
}

// Groups returns the paths of all nodes in pre-order.
func (t *Tree) Groups() []string {
	groups := make([]string, 0, len(t.nodes))
	for n := range t.Subtree() {
		groups = append(groups, n.Path())
	}

	return groups
}

// HasGroup reports whether path names a node of the tree.
func (t *Tree) HasGroup(path string) bool {
	_, ok := t.Lookup(path)
	return ok
}

func checkName(name string) error {
	if name == "" || strings.Contains(name, Separator) || name == "." || name == ".." {
		return errors.Wrapf(errs.ErrInvalidNodeName, "%q", name)
	}

	return nil
}

// splitPath splits an absolute or relative path into names. "/" and "" yield
// no names.
func splitPath(path string) ([]string, error) {
	trimmed := strings.Trim(path, Separator)
	if trimmed == "" {
		return nil, nil
	}

	names := strings.Split(trimmed, Separator)
	for _, name := range names {
		if err := checkName(name); err != nil {
			return nil, errors.Wrapf(err, "path %q", path)
		}
	}

	return slices.Clip(names), nil
}
