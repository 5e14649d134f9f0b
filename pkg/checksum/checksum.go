// pkg/checksum/checksum.go

// Package checksum 提供二进制行为图包的完整性校验
package checksum

import (
	"hash/crc32"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
)

var (
	ErrUnsupported = errors.New("checksum: unsupported type")
	ErrMismatch    = errors.New("checksum: mismatch")
)

// Type 校验算法类型
type Type string

const (
	TypeCRC32  Type = "crc32"
	TypeCRC32C Type = "crc32c"
	TypeXXHash Type = "xxhash"
)

var codes = []Type{TypeCRC32, TypeCRC32C, TypeXXHash}

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Hasher 计算 32 位校验和
type Hasher interface {
	Sum(data []byte) uint32
	Type() Type
}

type hasherFunc struct {
	typ Type
	sum func([]byte) uint32
}

func (h hasherFunc) Sum(data []byte) uint32 { return h.sum(data) }
func (h hasherFunc) Type() Type             { return h.typ }

// New 创建校验器，空类型视为 CRC32C
func New(t Type) (Hasher, error) {
	switch t {
	case TypeCRC32:
		return hasherFunc{t, crc32.ChecksumIEEE}, nil
	case TypeCRC32C, "":
		return hasherFunc{TypeCRC32C, func(b []byte) uint32 { return crc32.Checksum(b, castagnoli) }}, nil
	case TypeXXHash:
		// 取 64 位结果的低 32 位
		return hasherFunc{t, func(b []byte) uint32 { return uint32(xxhash.Sum64(b)) }}, nil
	default:
		return nil, errors.Wrapf(ErrUnsupported, "type %q", t)
	}
}

// Verify 校验失败时返回 ErrMismatch
func Verify(h Hasher, data []byte, want uint32) error {
	if got := h.Sum(data); got != want {
		return errors.Wrapf(ErrMismatch, "%s: got %08x, want %08x", h.Type(), got, want)
	}
	return nil
}

// Code 返回算法的单字节编码
func (t Type) Code() (byte, error) {
	if t == "" {
		t = TypeCRC32C
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
