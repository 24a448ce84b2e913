package compressor

import (
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"

	"ncdc/internal/domain"
)

// The deflate family shares one shape: a resettable writer pooled across
// calls, writing into a countWriter. gzip is the reference backend for
// compression-distance classification; flate and zlib differ only in framing
// overhead, which shifts NCD values slightly but preserves their ordering.

type gzipCompressor struct {
	pool sync.Pool
}

func newGzipCompressor(level int) (*gzipCompressor, error) {
	if _, err := gzip.NewWriterLevel(io.Discard, level); err != nil {
		return nil, fmt.Errorf("%w: gzip level %d", domain.ErrInvalidArgument, level)
	}
	c := &gzipCompressor{}
	c.pool.New = func() any {
		zw, _ := gzip.NewWriterLevel(io.Discard, level)
		return zw
	}
	return c, nil
}

func (c *gzipCompressor) Name() string { return "gzip" }

func (c *gzipCompressor) CompressedSize(text string) (int, error) {
	zw := c.pool.Get().(*gzip.Writer)
	defer c.pool.Put(zw)

	var cw countWriter
	zw.Reset(&cw)
	if _, err := io.WriteString(zw, text); err != nil {
		return 0, err
	}
	if err := zw.Close(); err != nil {
		return 0, err
	}
	return cw.n, nil
}

type flateCompressor struct {
	pool sync.Pool
}

func newFlateCompressor(level int) (*flateCompressor, error) {
	if _, err := flate.NewWriter(io.Discard, level); err != nil {
		return nil, fmt.Errorf("%w: flate level %d", domain.ErrInvalidArgument, level)
	}
	c := &flateCompressor{}
	c.pool.New = func() any {
		fw, _ := flate.NewWriter(io.Discard, level)
		return fw
	}
	return c, nil
}

func (c *flateCompressor) Name() string { return "flate" }

func (c *flateCompressor) CompressedSize(text string) (int, error) {
	fw := c.pool.Get().(*flate.Writer)
	defer c.pool.Put(fw)

	var cw countWriter
	fw.Reset(&cw)
	if _, err := io.WriteString(fw, text); err != nil {
		return 0, err
	}
	if err := fw.Close(); err != nil {
		return 0, err
	}
	return cw.n, nil
}

type zlibCompressor struct {
	pool sync.Pool
}

func newZlibCompressor(level int) (*zlibCompressor, error) {
	if _, err := zlib.NewWriterLevel(io.Discard, level); err != nil {
		return nil, fmt.Errorf("%w: zlib level %d", domain.ErrInvalidArgument, level)
	}
	c := &zlibCompressor{}
	c.pool.New = func() any {
		zw, _ := zlib.NewWriterLevel(io.Discard, level)
		return zw
	}
	return c, nil
}

func (c *zlibCompressor) Name() string { return "zlib" }

func (c *zlibCompressor) CompressedSize(text string) (int, error) {
	zw := c.pool.Get().(*zlib.Writer)
	defer c.pool.Put(zw)

	var cw countWriter
	zw.Reset(&cw)
	if _, err := io.WriteString(zw, text); err != nil {
		return 0, err
	}
	if err := zw.Close(); err != nil {
		return 0, err
	}
	return cw.n, nil
}
