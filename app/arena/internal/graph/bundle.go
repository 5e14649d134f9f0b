package graph

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/combatai/pkg/checksum"
	"github.com/lk2023060901/combatai/pkg/compress"
	"github.com/lk2023060901/combatai/pkg/serializer"
	"github.com/valyala/bytebufferpool"
)

// 包头: magic(4) | version(1) | compress(1) | checksum(1) | flags(1) | rawLen(4) | sum(4)
const (
	bundleMagic      = "CGRF"
	bundleVersion    = 1
	bundleHeaderSize = 16

	flagCompressed byte = 1 << 0
)

var (
	ErrBundleMagic   = errors.New("graph: not a compiled graph bundle")
	ErrBundleVersion = errors.New("graph: unsupported bundle version")
)

// BundleOptions 编译选项
type BundleOptions struct {
	Compress compress.Type `mapstructure:"compress"`
	Checksum checksum.Type `mapstructure:"checksum"`
	// 小于此字节数的负载不压缩
	MinCompressBytes int `mapstructure:"min_compress_bytes" validate:"gte=0"`
}

// DefaultBundleOptions zstd + crc32c
func DefaultBundleOptions() BundleOptions {
	return BundleOptions{
		Compress:         compress.TypeZstd,
		Checksum:         checksum.TypeCRC32C,
		MinCompressBytes: 256,
	}
}

// EncodeBundle 将运行时图编译为二进制包
func EncodeBundle(c *Container, opts BundleOptions) ([]byte, error) {
	raw, err := serializer.Encode(NewDocument(c))
	if err != nil {
		return nil, errors.Wrap(err, "graph: encode bundle payload")
	}

	ctype, err := opts.Compress.Code()
	if err != nil {
		return nil, err
	}
	htype, err := opts.Checksum.Code()
	if err != nil {
		return nil, err
	}
	hasher, err := checksum.New(opts.Checksum)
	if err != nil {
		return nil, err
	}

	var flags byte
	payload := raw
	if opts.Compress != compress.TypeNone && opts.Compress != "" && len(raw) >= opts.MinCompressBytes {
		cmp, err := compress.New(opts.Compress)
		if err != nil {
			return nil, err
		}
		if payload, err = cmp.Compress(raw); err != nil {
			return nil, errors.Wrap(err, "graph: compress bundle")
		}
		flags |= flagCompressed
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	var head [bundleHeaderSize]byte
	copy(head[:4], bundleMagic)
	head[4] = bundleVersion
	head[5] = ctype
	head[6] = htype
	head[7] = flags
	binary.BigEndian.PutUint32(head[8:12], uint32(len(raw)))
	binary.BigEndian.PutUint32(head[12:16], hasher.Sum(payload))

	_, _ = buf.Write(head[:])
	_, _ = buf.Write(payload)
	return append([]byte(nil), buf.B...), nil
}

// DecodeBundle 校验并解析二进制包
func DecodeBundle(data []byte) (*Container, error) {
	if len(data) < bundleHeaderSize || string(data[:4]) != bundleMagic {
		return nil, ErrBundleMagic
	}
	if data[4] != bundleVersion {
		return nil, errors.Wrapf(ErrBundleVersion, "version %d", data[4])
	}
	ctype, err := compress.FromCode(data[5])
	if err != nil {
		return nil, err
	}
	htype, err := checksum.FromCode(data[6])
	if err != nil {
		return nil, err
	}
	hasher, err := checksum.New(htype)
	if err != nil {
		return nil, err
	}

	flags := data[7]
	rawLen := binary.BigEndian.Uint32(data[8:12])
	payload := data[bundleHeaderSize:]
	if err := checksum.Verify(hasher, payload, binary.BigEndian.Uint32(data[12:16])); err != nil {
		return nil, errors.Wrap(err, "graph: bundle payload")
	}

	raw := payload
	if flags&flagCompressed != 0 {
		cmp, err := compress.New(ctype)
		if err != nil {
			return nil, err
		}
		if raw, err = cmp.Decompress(payload); err != nil {
			return nil, errors.Wrap(err, "graph: decompress bundle")
		}
	}
	if uint32(len(raw)) != rawLen {
		return nil, errors.Newf("graph: bundle payload is %d bytes, header says %d", len(raw), rawLen)
	}
	return Decode(raw, serializer.NewMsgPack())
}
