package treeio

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/datatree/internal/options"
	"github.com/arloliu/datatree/tree"
	"github.com/arloliu/datatree/zarr"
)

// WriteZarr writes every node of t as one group of store.
//
// Validation, in order, before any I/O:
//  1. the group must be the root (errs.ErrRootGroupOverride)
//  2. extras must not contain "append_dim" (errs.ErrAppendDim)
//  3. encoding keys must be groups of t (errs.ErrUnexpectedGroup)
//
// Group writes never consolidate metadata themselves. When consolidation is
// enabled (the default) it runs once, after the last group was written.
// ctx is checked before each group write.
func WriteZarr(ctx context.Context, t *tree.Tree, store zarr.Store, opts ...ZarrOption) error {
	cfg := defaultZarrConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return err
	}

	if err := validateZarr(t, cfg); err != nil {
		return err
	}

	writer := cfg.Writer
	if writer == nil {
		w, err := zarr.NewWriter()
		if err != nil {
			return err
		}
		writer = w
	}

	consolidator := cfg.Consolidator
	if consolidator == nil {
		consolidator = ConsolidatorFunc(zarr.ConsolidateMetadata)
	}

	root := t.Root()
	resolver := NewResolver(root, cfg.Encoding, nil)
	modes := newZarrEscalator(cfg.Mode)

	for n := range t.Subtree() {
		if err := ctx.Err(); err != nil {
			return err
		}

		atRoot := n == root
		ds := n.ToDataset(cfg.InheritCoords || atRoot)
		res := resolver.Resolve(n)

		req := zarr.WriteRequest{
			Group:        res.Group,
			Mode:         modes.Mode(),
			Encoding:     res.Encoding,
			Consolidated: false,
			Compute:      cfg.Compute,
			Extra:        cfg.Extra,
		}
		if err := writer.WriteGroup(ds, store, req); err != nil {
			return errors.Wrapf(err, "write group %q", n.Path())
		}
		modes.Committed()
	}

	if !cfg.Consolidated {
		return nil
	}
	if err := consolidator.Consolidate(store); err != nil {
		return errors.Wrap(err, "consolidate metadata")
	}

	return nil
}
