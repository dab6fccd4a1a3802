package zarr

import (
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/datatree/dataset"
	"github.com/arloliu/datatree/errs"
)

// ChunkKey generates the key of the chunk at indices, for example
// indices=[1, 4] with separator "." gives "1.4". A 0-d array has the single
// chunk "0".
func ChunkKey(indices []int, separator string) string {
	if len(indices) == 0 {
		return "0"
	}
	if len(indices) == 1 {
		return strconv.Itoa(indices[0])
	}

	var sb strings.Builder
	for i, idx := range indices {
		if i > 0 {
			sb.WriteString(separator)
		}
		sb.WriteString(strconv.Itoa(idx))
	}

	return sb.String()
}

// defaultChunks stores the whole array in one chunk.
func defaultChunks(shape []int) []int {
	chunks := make([]int, len(shape))
	for i, s := range shape {
		chunks[i] = max(s, 1)
	}

	return chunks
}

// resolveChunks validates requested chunks against shape.
func resolveChunks(shape, requested []int) ([]int, error) {
	if len(requested) == 0 {
		return defaultChunks(shape), nil
	}
	if len(requested) != len(shape) {
		return nil, errs.Validation(errors.Wrapf(errs.ErrInvalidOption, "chunks %v for shape %v", requested, shape))
	}
	for _, c := range requested {
		if c <= 0 {
			return nil, errs.Validation(errors.Wrapf(errs.ErrInvalidOption, "chunks %v must be positive", requested))
		}
	}

	return slices.Clone(requested), nil
}

// grid is the regular chunk grid of one array.
type grid struct {
	shape  []int
	chunks []int
}

// chunkLen returns the number of elements of a full chunk.
func (g grid) chunkLen() int {
	return dataset.ShapeSize(g.chunks)
}

// counts returns the number of chunks along each dimension.
func (g grid) counts() []int {
	counts := make([]int, len(g.shape))
	for i, s := range g.shape {
		counts[i] = (s + g.chunks[i] - 1) / g.chunks[i]
	}

	return counts
}

// indices yields every chunk index in C order. Arrays with an empty
// dimension have no chunks.
func (g grid) indices() iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		counts := g.counts()
		for _, c := range counts {
			if c == 0 {
				return
			}
		}

		idx := make([]int, len(counts))
		for {
			if !yield(slices.Clone(idx)) {
				return
			}
			if !increment(idx, counts) {
				return
			}
		}
	}
}

// increment advances a C-order counter; it reports false after the last value.
func increment(idx, limits []int) bool {
	for i := len(idx) - 1; i >= 0; i-- {
		idx[i]++
		if idx[i] < limits[i] {
			return true
		}
		idx[i] = 0
	}

	return false
}

// runs calls fn for each contiguous run shared by the array and the chunk at
// idx: arrayOff and chunkOff are element offsets, n the run length.
func (g grid) runs(idx []int, fn func(arrayOff, chunkOff, n int)) {
	ndim := len(g.shape)
	if ndim == 0 {
		fn(0, 0, 1)
		return
	}

	arrayStride := strides(g.shape)
	chunkStride := strides(g.chunks)
	origin := make([]int, ndim)
	extent := make([]int, ndim)
	for i := range ndim {
		origin[i] = idx[i] * g.chunks[i]
		extent[i] = min(g.chunks[i], g.shape[i]-origin[i])
	}

	last := ndim - 1
	pos := make([]int, last)
	for {
		arrayOff := origin[last]
		chunkOff := 0
		for i := range last {
			arrayOff += (origin[i] + pos[i]) * arrayStride[i]
			chunkOff += pos[i] * chunkStride[i]
		}
		fn(arrayOff, chunkOff, extent[last])

		if !increment(pos, extent[:last]) {
			return
		}
	}
}

func strides(shape []int) []int {
	s := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		s[i] = acc
		acc *= shape[i]
	}

	return s
}

// gather copies the part of src covered by chunk idx into dst, a full chunk.
func gather[T any](g grid, idx []int, src, dst []T) {
	g.runs(idx, func(arrayOff, chunkOff, n int) {
		copy(dst[chunkOff:chunkOff+n], src[arrayOff:arrayOff+n])
	})
}

// scatter copies a full chunk src into its place in dst.
func scatter[T any](g grid, idx []int, src, dst []T) {
	g.runs(idx, func(arrayOff, chunkOff, n int) {
		copy(dst[arrayOff:arrayOff+n], src[chunkOff:chunkOff+n])
	})
}
