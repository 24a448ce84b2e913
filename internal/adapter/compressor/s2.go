package compressor

import "github.com/klauspost/compress/s2"

// s2Compressor uses s2 block encoding. It is the fastest backend and the
// weakest at exposing shared structure between texts; useful mostly as a
// speed baseline in compressor comparisons.
type s2Compressor struct{}

func newS2Compressor() (s2Compressor, error) {
	return s2Compressor{}, nil
}

func (s2Compressor) Name() string { return "s2" }

func (s2Compressor) CompressedSize(text string) (int, error) {
	return len(s2.Encode(nil, []byte(text))), nil
}
