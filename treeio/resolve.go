package treeio

import (
	"fmt"

	"github.com/arloliu/datatree/dataset"
	"github.com/arloliu/datatree/tree"
)

// Resolution is the per-node result of Resolver.Resolve.
type Resolution struct {
	// Group is "" for the root node and "/" + the path relative to the root
	// otherwise.
	Group string
	// Encoding is the override registered for the node's path, or nil.
	Encoding dataset.Encoding
	// UnlimitedDims is the override registered for the node's path, or nil.
	UnlimitedDims []string
}

// Resolver maps nodes to group paths and routes path-keyed configuration to them.
type Resolver struct {
	root      tree.Node
	encoding  map[string]dataset.Encoding
	unlimited map[string][]string
}

// NewResolver creates a Resolver for nodes below root. Map keys are node
// paths as returned by tree.Node.Path.
func NewResolver(root tree.Node, encoding map[string]dataset.Encoding, unlimited map[string][]string) Resolver {
	return Resolver{root: root, encoding: encoding, unlimited: unlimited}
}

// Resolve computes the group path and configuration of n.
//
// Panics if n is not in the subtree of the resolver's root.
func (r Resolver) Resolve(n tree.Node) Resolution {
	return Resolution{
		Group:         r.GroupPath(n),
		Encoding:      r.encoding[n.Path()],
		UnlimitedDims: r.unlimited[n.Path()],
	}
}

// GroupPath returns the container group of n.
func (r Resolver) GroupPath(n tree.Node) string {
	if n == r.root {
		return ""
	}

	rel, err := n.RelativeTo(r.root)
	if err != nil {
		panic(fmt.Sprintf("treeio: resolving node outside the written tree: %v", err))
	}

	return "/" + rel
}
