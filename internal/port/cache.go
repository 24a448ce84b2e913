package port

// LengthCache memoizes individual compressed lengths so repeated runs over
// the same corpus skip recompression. A cache is scoped to one compressor
// configuration; implementations must be safe for concurrent use. Caching is
// optional everywhere it appears: a miss (or no cache at all) changes
// performance, never results.
type LengthCache interface {
	Get(text string) (int, bool)
	Put(text string, size int)
}
