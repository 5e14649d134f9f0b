// pkg/compress/compress_test.go
package compress

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	noise := make([]byte, 4096)
	for i := range noise {
		noise[i] = byte(rng.UintN(256))
	}
	inputs := map[string][]byte{
		"empty":  {},
		"small":  []byte("approach"),
		"repeat": bytes.Repeat([]byte("utility selector "), 2000),
		"noise":  noise,
	}

	for _, typ := range []Type{TypeNone, TypeSnappy, TypeZstd, TypeLZ4} {
		c, err := New(typ)
		require.NoError(t, err)
		assert.Equal(t, typ, c.Type())

		for name, in := range inputs {
			t.Run(string(typ)+"/"+name, func(t *testing.T) {
				packed, err := c.Compress(in)
				require.NoError(t, err)
				out, err := c.Decompress(packed)
				require.NoError(t, err)
				assert.True(t, bytes.Equal(in, out))
			})
		}

		out, err := c.Compress(nil)
		require.NoError(t, err)
		assert.Nil(t, out)
	}
}

func TestRepeatedInputShrinks(t *testing.T) {
	in := bytes.Repeat([]byte("block "), 5000)
	for _, typ := range []Type{TypeSnappy, TypeZstd, TypeLZ4} {
		c, err := New(typ)
		require.NoError(t, err)
		packed, err := c.Compress(in)
		require.NoError(t, err)
		assert.Less(t, len(packed), len(in)/4, typ)
	}
}

func TestCodes(t *testing.T) {
	for _, typ := range []Type{TypeNone, TypeSnappy, TypeZstd, TypeLZ4} {
		b, err := typ.Code()
		require.NoError(t, err)
		back, err := FromCode(b)
		require.NoError(t, err)
		assert.Equal(t, typ, back)
	}

	_, err := Type("brotli").Code()
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = FromCode(9)
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = New("brotli")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestLZ4Corrupt(t *testing.T) {
	c := lz4Compressor{}
	_, err := c.Decompress([]byte{7, 3, 1, 2, 3})
	assert.Error(t, err)
	_, err = c.Decompress([]byte{lz4Raw, 5, 1, 2})
	assert.Error(t, err)
}
