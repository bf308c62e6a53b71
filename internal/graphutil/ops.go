package graphutil

// Dataset op tags understood by the optimizer passes.
const (
	MapDatasetOp           = "MapDataset"
	ParallelMapDatasetOp   = "ParallelMapDataset"
	ParallelMapDatasetV2Op = "ParallelMapDatasetV2"
	RangeDatasetOp         = "RangeDataset"
	CacheDatasetOp         = "CacheDataset"
	ConstOp                = "Const"
)

// IsMapFamily reports whether the op applies a function to every element.
func IsMapFamily(op string) bool {
	switch op {
	case MapDatasetOp, ParallelMapDatasetOp, ParallelMapDatasetV2Op:
		return true
	}
	return false
}

// IsParallelMap reports whether the op is a parallel variant of map, which
// carries a `num_parallel_calls` input after its captured arguments.
func IsParallelMap(op string) bool {
	return op == ParallelMapDatasetOp || op == ParallelMapDatasetV2Op
}
