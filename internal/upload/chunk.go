package upload

// Chunk is an inclusive range of record indices sent as one batch.
type Chunk struct {
	First int
	Last  int
}

// Len returns the number of records in the chunk.
func (c Chunk) Len() int {
	return c.Last - c.First + 1
}

// Chunks partitions indices 1..total into consecutive chunks of at most size
// records. Only the last chunk can be shorter. It returns nil if total or size
// is not positive.
func Chunks(total, size int) []Chunk {
	if total <= 0 || size <= 0 {
		return nil
	}
	out := make([]Chunk, 0, (total+size-1)/size)
	for first := 1; first <= total; first += size {
		out = append(out, Chunk{First: first, Last: min(first+size-1, total)})
	}
	return out
}
