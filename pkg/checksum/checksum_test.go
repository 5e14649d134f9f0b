// pkg/checksum/checksum_test.go
package checksum

import (
	"hash/crc32"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	data := []byte("heavy attack released")

	h, err := New(TypeCRC32)
	require.NoError(t, err)
	assert.Equal(t, crc32.ChecksumIEEE(data), h.Sum(data))

	h, err = New(TypeCRC32C)
	require.NoError(t, err)
	assert.Equal(t, crc32.Checksum(data, crc32.MakeTable(crc32.Castagnoli)), h.Sum(data))

	h, err = New(TypeXXHash)
	require.NoError(t, err)
	assert.Equal(t, uint32(xxhash.Sum64(data)), h.Sum(data))

	h, err = New("")
	require.NoError(t, err)
	assert.Equal(t, TypeCRC32C, h.Type())
}

func TestVerify(t *testing.T) {
	data := []byte("block")
	for _, typ := range []Type{TypeCRC32, TypeCRC32C, TypeXXHash} {
		h, err := New(typ)
		require.NoError(t, err)
		sum := h.Sum(data)
		assert.NoError(t, Verify(h, data, sum))
		assert.ErrorIs(t, Verify(h, data, sum+1), ErrMismatch)
		assert.ErrorIs(t, Verify(h, []byte("blocK"), sum), ErrMismatch)
	}
}

func TestCodes(t *testing.T) {
	for _, typ := range []Type{TypeCRC32, TypeCRC32C, TypeXXHash} {
		b, err := typ.Code()
		require.NoError(t, err)
		back, err := FromCode(b)
		require.NoError(t, err)
		assert.Equal(t, typ, back)
	}
	_, err := New("md5")
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = FromCode(200)
	assert.ErrorIs(t, err, ErrUnsupported)
}
