// pkg/compress/compress.go

// Package compress 提供行为图包使用的压缩算法
package compress

import (
	"github.com/cockroachdb/errors"
)

// ErrUnsupported 未知的压缩算法
var ErrUnsupported = errors.New("compress: unsupported type")

// Type 压缩算法类型
type Type string

const (
	TypeNone   Type = "none"
	TypeSnappy Type = "snappy"
	TypeZstd   Type = "zstd"
	TypeLZ4    Type = "lz4"
)

// 单字节编码，写入二进制包头
var codes = []Type{TypeNone, TypeSnappy, TypeZstd, TypeLZ4}

// Compressor 压缩器接口
type Compressor interface {
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error)
	Type() Type
}

// New 创建压缩器，空类型视为 TypeNone
func New(t Type) (Compressor, error) {
	switch t {
	case TypeNone, "":
		return none{}, nil
	case TypeSnappy:
		return snappyCompressor{}, nil
	case TypeZstd:
		return newZstd()
	case TypeLZ4:
		return lz4Compressor{}, nil
	default:
		return nil, errors.Wrapf(ErrUnsupported, "type %q", t)
	}
}

// Code 返回算法的单字节编码
func (t Type) Code() (byte, error) {
	if t == "" {
		return 0, nil
	}
	for i, c := range codes {
		if c == t {
			return byte(i), nil
		}
	}
	return 0, errors.Wrapf(ErrUnsupported, "type %q", t)
}

// FromCode 由单字节编码还原算法类型
func FromCode(b byte) (Type, error) {
	if int(b) >= len(codes) {
		return "", errors.Wrapf(ErrUnsupported, "code %d", b)
	}
	return codes[b], nil
}

type none struct{}

func (none) Compress(src []byte) ([]byte, error)   { return clone(src), nil }
func (none) Decompress(src []byte) ([]byte, error) { return clone(src), nil }
func (none) Type() Type                            { return TypeNone }

func clone(src []byte) []byte {
	if src == nil {
		return nil
	}
	return append([]byte{}, src...)
}
