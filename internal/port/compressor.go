package port

// Compressor produces the compressed byte length of a text using a
// deterministic lossless codec. Implementations must be safe for concurrent
// use: distance construction fans out across goroutines.
type Compressor interface {
	// Name identifies the backend (e.g. "gzip").
	Name() string

	// CompressedSize returns the byte length of the compressed form of text.
	// Same text in, same length out. Empty input is valid and yields the
	// codec's framing overhead.
	CompressedSize(text string) (int, error)
}
