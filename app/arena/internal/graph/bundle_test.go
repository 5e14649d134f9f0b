package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/combatai/pkg/checksum"
	"github.com/lk2023060901/combatai/pkg/compress"
	"github.com/lk2023060901/combatai/pkg/serializer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func duelContainer(t *testing.T) *Container {
	t.Helper()
	c, err := Decode([]byte(duelYAML), serializer.NewYAML())
	require.NoError(t, err)
	return c
}

func TestBundleRoundTrip(t *testing.T) {
	c := duelContainer(t)
	for _, ct := range []compress.Type{compress.TypeNone, compress.TypeSnappy, compress.TypeZstd, compress.TypeLZ4} {
		for _, ht := range []checksum.Type{checksum.TypeCRC32, checksum.TypeCRC32C, checksum.TypeXXHash} {
			t.Run(string(ct)+"/"+string(ht), func(t *testing.T) {
				data, err := EncodeBundle(c, BundleOptions{Compress: ct, Checksum: ht})
				require.NoError(t, err)
				assert.Equal(t, bundleMagic, string(data[:4]))
				assert.Equal(t, ct != compress.TypeNone, data[7]&flagCompressed != 0)

				back, err := DecodeBundle(data)
				require.NoError(t, err)
				assert.Equal(t, NewDocument(c), NewDocument(back))
			})
		}
	}
}

func TestBundleSmallPayloadStaysRaw(t *testing.T) {
	data, err := EncodeBundle(duelContainer(t), BundleOptions{Compress: compress.TypeZstd, MinCompressBytes: 1 << 20})
	require.NoError(t, err)
	assert.Zero(t, data[7]&flagCompressed)

	_, err = DecodeBundle(data)
	assert.NoError(t, err)
}

func TestBundleRejectsDamage(t *testing.T) {
	data, err := EncodeBundle(duelContainer(t), DefaultBundleOptions())
	require.NoError(t, err)

	flipped := append([]byte(nil), data...)
	flipped[len(flipped)-1] ^= 0xFF
	_, err = DecodeBundle(flipped)
	assert.True(t, errors.Is(err, checksum.ErrMismatch))

	_, err = DecodeBundle([]byte("name: duel"))
	assert.True(t, errors.Is(err, ErrBundleMagic))

	future := append([]byte(nil), data...)
	future[4] = 9
	_, err = DecodeBundle(future)
	assert.True(t, errors.Is(err, ErrBundleVersion))

	unknown := append([]byte(nil), data...)
	unknown[5] = 42
	_, err = DecodeBundle(unknown)
	assert.True(t, errors.Is(err, compress.ErrUnsupported))
}

func TestBundleFile(t *testing.T) {
	c := duelContainer(t)
	path := filepath.Join(t.TempDir(), "duel"+BundleExt)
	require.NoError(t, SaveFile(path, c))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, bundleMagic, string(raw[:4]))

	back, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "duel", back.Name)
	assert.Equal(t, NewDocument(c), NewDocument(back))
}
