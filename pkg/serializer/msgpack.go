// pkg/serializer/msgpack.go
package serializer

import (
	"bytes"
	"io"
	"reflect"

	"github.com/hashicorp/go-msgpack/v2/codec"
	"github.com/valyala/bytebufferpool"
)

// msgpackHandle RawToString=true, MapType=map[string]any
var msgpackHandle = &codec.MsgpackHandle{}

func init() {
	msgpackHandle.MapType = reflect.TypeOf(map[string]any{})
	msgpackHandle.RawToString = true
}

// Encode 使用 msgpack 编码
func Encode(v any) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := codec.NewEncoder(buf, msgpackHandle).Encode(v); err != nil {
		return nil, err
	}
	// buf 会被复用
	return bytes.Clone(buf.B), nil
}

// Decode 使用 msgpack 解码
func Decode(data []byte, v any) error {
	return codec.NewDecoderBytes(data, msgpackHandle).Decode(v)
}

// NewEncoder 创建 msgpack 编码器
func NewEncoder(w io.Writer) *codec.Encoder {
	return codec.NewEncoder(w, msgpackHandle)
}

// NewDecoder 创建 msgpack 解码器
func NewDecoder(r io.Reader) *codec.Decoder {
	return codec.NewDecoder(r, msgpackHandle)
}
