package database

// BatchSize caps the rows per multi-row INSERT, keeping bind parameters well
// under the Postgres and SQLite limits.
const BatchSize = 500

// Chunks splits n items into [start, end) ranges of at most size.
func Chunks(n, size int) [][2]int {
	if size <= 0 {
		size = BatchSize
	}
	var out [][2]int
	for start := 0; start < n; start += size {
		out = append(out, [2]int{start, min(start+size, n)})
	}
	return out
}
