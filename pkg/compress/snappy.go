// pkg/compress/snappy.go
package compress

import (
	"github.com/cockroachdb/errors"
	"github.com/golang/snappy"
)

type snappyCompressor struct{}

func (snappyCompressor) Compress(src []byte) ([]byte, error) {
	if src == nil {
		return nil, nil
	}
	return snappy.Encode(nil, src), nil
}

func (snappyCompressor) Decompress(src []byte) ([]byte, error) {
	if src == nil {
		return nil, nil
	}
	dst, err := snappy.Decode(nil, src)
	return dst, errors.Wrap(err, "compress: snappy decode")
}

func (snappyCompressor) Type() Type { return TypeSnappy }
