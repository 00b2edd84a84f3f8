package batcher

// Size is the largest batch the catalog API accepts in one call.
const Size = 100

type Batch[T any] struct {
	Number int
	Start  int
	Items  []T
}

// Number returns the 1-based batch number of the batch starting at index.
func Number(index, size int) int {
	if size <= 0 {
		size = Size
	}
	return index/size + 1
}

// Split cuts items into contiguous batches of at most size elements.
// Batch items alias the input slice.
func Split[T any](items []T, size int) []Batch[T] {
	if size <= 0 {
		size = Size
	}
	out := make([]Batch[T], 0, (len(items)+size-1)/size)
	for i := 0; i < len(items); i += size {
		end := min(i+size, len(items))
		out = append(out, Batch[T]{
			Number: Number(i, size),
			Start:  i,
			Items:  items[i:end:end],
		})
	}
	return out
}
