// Package compressor provides the deterministic lossless codecs that back
// normalised compression distance. Every backend reports only the compressed
// byte length of its input; the compressed bytes themselves are discarded.
package compressor

import (
	"fmt"

	"ncdc/internal/domain"
	"ncdc/internal/port"
)

// Default is the backend used when no compressor is configured.
const Default = "gzip"

// New constructs a compressor backend by name. level applies to the deflate
// family (gzip, flate, zlib; -1 selects the library default) and to zstd
// (mapped onto its speed levels); lz4 and s2 ignore it.
func New(name string, level int) (port.Compressor, error) {
	switch name {
	case "gzip":
		return newGzipCompressor(level)
	case "flate":
		return newFlateCompressor(level)
	case "zlib":
		return newZlibCompressor(level)
	case "zstd":
		return newZstdCompressor(level)
	case "lz4":
		return newLZ4Compressor()
	case "s2":
		return newS2Compressor()
	default:
		return nil, fmt.Errorf("%w: unknown compressor %q", domain.ErrInvalidArgument, name)
	}
}

// Names lists the registered backend names.
func Names() []string {
	return []string{"flate", "gzip", "lz4", "s2", "zlib", "zstd"}
}

// countWriter counts bytes instead of storing them. The NCD computation only
// needs compressed lengths, so compressed output is never buffered.
type countWriter struct {
	n int
}

func (w *countWriter) Write(p []byte) (int, error) {
	w.n += len(p)
	return len(p), nil
}
