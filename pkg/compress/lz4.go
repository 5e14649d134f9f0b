// pkg/compress/lz4.go
package compress

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/pierrec/lz4/v4"
)

const (
	lz4Raw   byte = 0
	lz4Block byte = 1
)

// lz4Compressor 块格式: 模式字节 | uvarint 原始长度 | 数据
// 不可压缩的数据以 lz4Raw 模式原样保存
type lz4Compressor struct{}

func (lz4Compressor) Compress(src []byte) ([]byte, error) {
	if src == nil {
		return nil, nil
	}
	head := make([]byte, 1+binary.MaxVarintLen64)
	n := 1 + binary.PutUvarint(head[1:], uint64(len(src)))

	dst := make([]byte, n+lz4.CompressBlockBound(len(src)))
	size, err := lz4.CompressBlock(src, dst[n:], nil)
	if err != nil {
		return nil, errors.Wrap(err, "compress: lz4 encode")
	}
	if size == 0 || size >= len(src) {
		head[0] = lz4Raw
		return append(head[:n:n], src...), nil
	}
	head[0] = lz4Block
	copy(dst, head[:n])
	return dst[:n+size], nil
}

func (lz4Compressor) Decompress(src []byte) ([]byte, error) {
	if src == nil {
		return nil, nil
	}
	if len(src) < 2 {
		return nil, errors.New("compress: lz4 frame too short")
	}
	size, n := binary.Uvarint(src[1:])
	if n <= 0 {
		return nil, errors.New("compress: lz4 bad length prefix")
	}
	body := src[1+n:]
	switch src[0] {
	case lz4Raw:
		if uint64(len(body)) != size {
			return nil, errors.Newf("compress: lz4 raw length %d, want %d", len(body), size)
		}
		return clone(body), nil
	case lz4Block:
		dst := make([]byte, size)
		got, err := lz4.UncompressBlock(body, dst)
		if err != nil {
			return nil, errors.Wrap(err, "compress: lz4 decode")
		}
		if uint64(got) != size {
			return nil, errors.Newf("compress: lz4 decoded %d bytes, want %d", got, size)
		}
		return dst, nil
	default:
		return nil, errors.Newf("compress: lz4 unknown mode %d", src[0])
	}
}

func (lz4Compressor) Type() Type { return TypeLZ4 }
