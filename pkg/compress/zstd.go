// pkg/compress/zstd.go
package compress

import (
	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zstd"
)

// zstdCompressor EncodeAll/DecodeAll 可并发调用
type zstdCompressor struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newZstd() (*zstdCompressor, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, errors.Wrap(err, "compress: zstd encoder")
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, errors.Wrap(err, "compress: zstd decoder")
	}
	return &zstdCompressor{enc: enc, dec: dec}, nil
}

func (c *zstdCompressor) Compress(src []byte) ([]byte, error) {
	if src == nil {
		return nil, nil
	}
	return c.enc.EncodeAll(src, nil), nil
}

func (c *zstdCompressor) Decompress(src []byte) ([]byte, error) {
	if src == nil {
		return nil, nil
	}
	dst, err := c.dec.DecodeAll(src, nil)
	return dst, errors.Wrap(err, "compress: zstd decode")
}

func (c *zstdCompressor) Type() Type { return TypeZstd }
