package treeio

import (
	"maps"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/datatree/errs"
	"github.com/arloliu/datatree/format"
	"github.com/arloliu/datatree/tree"
	"github.com/arloliu/datatree/zarr"
)

// ExtraAppendDim is the backend option rejected by WriteZarr.
const ExtraAppendDim = "append_dim"

func checkNetCDFFormat(ff format.FileFormat) error {
	if ff != 0 && ff != format.FormatNetCDF4 {
		return errs.Validation(errors.Wrapf(errs.ErrUnsupportedFormat,
			"tree writes only support the %s format, got %s", format.FormatNetCDF4, ff))
	}

	return nil
}

// checkNetCDFEngine validates engine and applies the h5netcdf default.
func checkNetCDFEngine(engine format.Engine) (format.Engine, error) {
	switch engine {
	case 0:
		return format.EngineH5NetCDF, nil
	case format.EngineNetCDF4, format.EngineH5NetCDF, format.EnginePydap:
		return engine, nil
	default:
		return 0, errs.Validation(errors.Wrapf(errs.ErrUnsupportedEngine,
			"tree writes only support the netcdf4, h5netcdf and pydap engines, got %s", engine))
	}
}

func checkRootGroup(group string) error {
	if group != "" && group != tree.Separator {
		return errs.NotImplemented(errors.Wrapf(errs.ErrRootGroupOverride, "group %q", group))
	}

	return nil
}

func checkCompute(compute bool) error {
	if !compute {
		return errs.NotImplemented(errs.ErrDeferredCompute)
	}

	return nil
}

func checkAppendDim(extra map[string]any) error {
	if _, ok := extra[ExtraAppendDim]; ok {
		return errs.NotImplemented(errs.ErrAppendDim)
	}

	return nil
}

// checkGroupKeys fails with errs.ErrUnexpectedGroup naming, sorted, every key
// of m that is not one of groups.
func checkGroupKeys[V any](groups []string, what string, m map[string]V) error {
	var unexpected []string
	for _, key := range slices.Sorted(maps.Keys(m)) {
		if !slices.Contains(groups, key) {
			unexpected = append(unexpected, key)
		}
	}
	if len(unexpected) == 0 {
		return nil
	}

	return errs.Validation(errors.Wrapf(errs.ErrUnexpectedGroup, "%s: %v", what, unexpected))
}

func validateNetCDF(t *tree.Tree, cfg *NetCDFConfig) (format.Engine, error) {
	if err := checkNetCDFFormat(cfg.Format); err != nil {
		return 0, err
	}
	engine, err := checkNetCDFEngine(cfg.Engine)
	if err != nil {
		return 0, err
	}
	if err := checkRootGroup(cfg.Group); err != nil {
		return 0, err
	}
	if err := checkCompute(cfg.Compute); err != nil {
		return 0, err
	}
	groups := t.Groups()
	if err := checkGroupKeys(groups, "encoding", cfg.Encoding); err != nil {
		return 0, err
	}
	if err := checkGroupKeys(groups, "unlimited dims", cfg.UnlimitedDims); err != nil {
		return 0, err
	}
	if err := checkTreeNames(t); err != nil {
		return 0, err
	}

	return engine, nil
}

func validateZarr(t *tree.Tree, cfg *ZarrConfig) error {
	if err := checkRootGroup(cfg.Group); err != nil {
		return err
	}
	if err := checkAppendDim(cfg.Extra); err != nil {
		return err
	}
	if err := checkGroupKeys(t.Groups(), "encoding", cfg.Encoding); err != nil {
		return err
	}
	if err := checkTreeNames(t); err != nil {
		return err
	}
	for n := range t.Subtree() {
		if err := zarr.CheckReservedAttrs(n.Dataset()); err != nil {
			return errors.Wrapf(err, "group %q", n.Path())
		}
	}

	return nil
}

// checkTreeNames rejects variables named like a child node of the same group.
func checkTreeNames(t *tree.Tree) error {
	if err := t.CheckNames(); err != nil {
		return errs.Validation(err)
	}

	return nil
}
