package sr

// Batch is the fixed lane width an instruction is evaluated across in one
// step (§3, §9 "Alignment"). Go gives no portable way to force a slice's
// backing array to a 32-byte pointer alignment without unsafe/cgo, so unlike
// the reference implementation's AlignedAlloc, BatchVector only rounds
// sizes up to a Batch multiple and relies on the runtime allocator's
// natural alignment for everything beyond that — the same tradeoff the
// generic-portable path of a SIMD library makes when it can't assume an
// architecture-specific allocator.
const Batch = 64

// BatchCount returns how many Batch-sized batches are needed to cover size
// rows, rounding up.
func BatchCount(size uint32) uint32 {
	cnt := size / Batch
	if size%Batch != 0 {
		cnt++
	}
	return cnt
}

// BatchVector is a column of padded, batch-aligned values. Its length is
// always BatchCount(size)*Batch; rows at index >= size are padding.
type BatchVector[T Float] struct {
	size uint32
	data []T
}

// NewBatchVector allocates a BatchVector holding size logical rows.
func NewBatchVector[T Float](size uint32) *BatchVector[T] {
	return &BatchVector[T]{
		size: size,
		data: make([]T, BatchCount(size)*Batch),
	}
}

// Size returns the logical (unpadded) row count.
func (v *BatchVector[T]) Size() uint32 { return v.size }

// Data returns the full padded backing slice.
func (v *BatchVector[T]) Data() []T { return v.data }

// Batch returns the idx'th batch as a Batch-length slice.
func (v *BatchVector[T]) Batch(idx uint32) []T {
	start := idx * Batch
	return v.data[start : start+Batch]
}

// Set writes a single logical row, including padding rows beyond Size().
func (v *BatchVector[T]) Set(idx uint32, val T) {
	v.data[idx] = val
}

// Get reads a single row.
func (v *BatchVector[T]) Get(idx uint32) T {
	return v.data[idx]
}

// Dataset is column-major, batch-padded storage for a fit: one BatchVector
// per input column, one for the target, and optionally one for per-row
// sample weights (§3, §4.A). Rows beyond the logical row count are filled
// by replaying real rows drawn from a PRNG seeded with the caller's
// RandomSeed, so two Datasets built from the same data and seed pad
// identically.
type Dataset[T Float] struct {
	size       uint32
	batchCount uint32
	x          []*BatchVector[T]
	y          *BatchVector[T]
	weight     *BatchVector[T]
}

// NewDataset allocates a Dataset for size rows and inputSize columns. Call
// SetX/SetY (and EnableWeight/SetWeight, if the fit supplies weights) to
// load data, then Pad to replay-fill the rows beyond size.
func NewDataset[T Float](size uint32, inputSize uint32) *Dataset[T] {
	ds := &Dataset[T]{
		size:       size,
		batchCount: BatchCount(size),
		x:          make([]*BatchVector[T], inputSize),
	}
	for i := range ds.x {
		ds.x[i] = NewBatchVector[T](size)
	}
	ds.y = NewBatchVector[T](size)
	return ds
}

// AddColumn appends a new, as-yet-unfilled input column and returns its
// index.
func (ds *Dataset[T]) AddColumn() uint32 {
	ds.x = append(ds.x, NewBatchVector[T](ds.size))
	return uint32(len(ds.x) - 1)
}

// EnableWeight allocates the sample-weight column, absent by default.
func (ds *Dataset[T]) EnableWeight() {
	if ds.weight == nil {
		ds.weight = NewBatchVector[T](ds.size)
	}
}

func (ds *Dataset[T]) Size() uint32       { return ds.size }
func (ds *Dataset[T]) BatchCount() uint32 { return ds.batchCount }
func (ds *Dataset[T]) CountX() int        { return len(ds.x) }
func (ds *Dataset[T]) HasWeight() bool    { return ds.weight != nil }

// SetX writes row idx of input column x.
func (ds *Dataset[T]) SetX(x int, idx uint32, val T) { ds.x[x].Set(idx, val) }

// SetY writes row idx of the target column.
func (ds *Dataset[T]) SetY(idx uint32, val T) { ds.y.Set(idx, val) }

// SetWeight writes row idx of the sample-weight column. EnableWeight must
// have been called first.
func (ds *Dataset[T]) SetWeight(idx uint32, val T) { ds.weight.Set(idx, val) }

// BatchX returns input column x's batchIndex'th batch.
func (ds *Dataset[T]) BatchX(x int, batchIndex uint32) []T { return ds.x[x].Batch(batchIndex) }

// BatchY returns the target's batchIndex'th batch.
func (ds *Dataset[T]) BatchY(batchIndex uint32) []T { return ds.y.Batch(batchIndex) }

// BatchWeight returns the sample-weight column's batchIndex'th batch, or
// nil if no weights were enabled.
func (ds *Dataset[T]) BatchWeight(batchIndex uint32) []T {
	if ds.weight == nil {
		return nil
	}
	return ds.weight.Batch(batchIndex)
}

// Pad fills every row in [Size(), BatchCount()*Batch) across every column
// (x, y, and weight if present) by replaying a row index drawn uniformly
// from [0,Size()) by r. Must be called exactly once after all real rows
// have been set.
func (ds *Dataset[T]) Pad(r *RandomEngine) {
	total := ds.batchCount * Batch
	if total == ds.size {
		return
	}
	for idx := ds.size; idx < total; idx++ {
		src := r.UintN(ds.size)
		for _, col := range ds.x {
			col.Set(idx, col.Get(src))
		}
		ds.y.Set(idx, ds.y.Get(src))
		if ds.weight != nil {
			ds.weight.Set(idx, ds.weight.Get(src))
		}
	}
}
