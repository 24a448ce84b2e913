package compressor

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

type zstdCompressor struct {
	pool sync.Pool
}

func newZstdCompressor(level int) (*zstdCompressor, error) {
	lvl := zstd.SpeedDefault
	if level > 0 {
		lvl = zstd.EncoderLevelFromZstd(level)
	}
	// Probe the options once so a bad configuration fails at construction,
	// not mid-batch.
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(lvl), zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	c := &zstdCompressor{}
	c.pool.New = func() any {
		e, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(lvl), zstd.WithEncoderConcurrency(1))
		return e
	}
	c.pool.Put(enc)
	return c, nil
}

func (c *zstdCompressor) Name() string { return "zstd" }

func (c *zstdCompressor) CompressedSize(text string) (int, error) {
	enc := c.pool.Get().(*zstd.Encoder)
	defer c.pool.Put(enc)

	return len(enc.EncodeAll([]byte(text), nil)), nil
}
