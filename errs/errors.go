// Package errs defines the sentinel errors shared by the datatree packages.
//
// Errors fall into three categories:
//
//   - Validation errors (ErrValidation): bad arguments detected before any I/O.
//     Correcting the arguments and retrying is always safe.
//   - Not-implemented errors (ErrNotImplemented): deliberately unsupported features,
//     also detected before any I/O.
//   - Write failures: anything returned by a dataset writer or storage backend.
//     These abort the current tree write and leave the destination as written so far.
//
// Use errors.Is with either the specific sentinel or the category marker:
//
//	if errors.Is(err, errs.ErrValidation) {
//	    // fix arguments
//	}
package errs

import "github.com/cockroachdb/errors"

// Category markers.
var (
	ErrValidation     = errors.New("validation error")
	ErrNotImplemented = errors.New("not implemented")
)

// Tree write validation.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrUnsupportedEngine = errors.New("unsupported engine")
	ErrUnexpectedGroup   = errors.New("unexpected group name")
	ErrInvalidMode       = errors.New("invalid write mode")
	ErrInvalidOption     = errors.New("invalid option")
	ErrUnknownOption     = errors.New("unknown option")
)

// Deliberately unsupported features.
var (
	ErrRootGroupOverride = errors.New("specifying a root group for the tree has not been implemented")
	ErrDeferredCompute   = errors.New("compute=false has not been implemented")
	ErrAppendDim         = errors.New("specifying append_dim for a tree write has not been implemented")
)

// Tree and dataset model.
var (
	ErrInvalidNodeName  = errors.New("invalid node name")
	ErrDuplicateNode    = errors.New("node already exists")
	ErrNodeNotFound     = errors.New("node not found")
	ErrNotAncestor      = errors.New("node is not an ancestor")
	ErrInvalidVariable  = errors.New("invalid variable")
	ErrDimensionClash   = errors.New("conflicting dimension sizes")
	ErrDuplicateName    = errors.New("variable name already in use")
	ErrUnknownVariable  = errors.New("encoding provided for non-existent variable")
	ErrUnknownDimension = errors.New("unlimited dimension not present in dataset")
)

// Containers and stores.
var (
	ErrContainerExists  = errors.New("container or group already exists")
	ErrGroupNotFound    = errors.New("group not found")
	ErrVariableExists   = errors.New("variable already exists")
	ErrVariableNotFound = errors.New("variable not found")
	ErrShapeMismatch    = errors.New("array shape or dtype mismatch")
	ErrKeyNotFound      = errors.New("key not found")
	ErrInvalidMagic     = errors.New("invalid container magic number")
	ErrInvalidHeader    = errors.New("invalid container header")
	ErrChecksumMismatch = errors.New("record checksum mismatch")
	ErrShortRecord      = errors.New("record truncated")
	ErrInvalidMetadata  = errors.New("invalid zarr metadata")
)

// Validation marks err as a validation error.
func Validation(err error) error {
	return errors.Mark(err, ErrValidation)
}

// NotImplemented marks err as a not-implemented error.
func NotImplemented(err error) error {
	return errors.Mark(err, ErrNotImplemented)
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotImplemented reports whether err is a not-implemented error.
func IsNotImplemented(err error) bool {
	return errors.Is(err, ErrNotImplemented)
}
