package enrollqr

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appURL = "https://dtx.example.uy/paciente"

func TestPNG(t *testing.T) {
	svc, err := New(appURL, 4)
	require.NoError(t, err)
	assert.Equal(t, appURL, svc.URL())

	b, err := svc.PNG(context.Background(), 0)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, DefaultSize, img.Bounds().Dx())
	assert.Equal(t, DefaultSize, img.Bounds().Dy())

	again, err := svc.PNG(context.Background(), DefaultSize)
	require.NoError(t, err)
	assert.Equal(t, b, again)
	assert.Equal(t, 1, svc.(*qrService).lru.Len())
}

func TestPNGCallersCannotCorruptCache(t *testing.T) {
	svc, err := New(appURL, 4)
	require.NoError(t, err)

	first, err := svc.PNG(context.Background(), MinSize)
	require.NoError(t, err)
	want := bytes.Clone(first)
	for i := range first {
		first[i] = 0
	}

	second, err := svc.PNG(context.Background(), MinSize)
	require.NoError(t, err)
	assert.Equal(t, want, second)

	_, err = png.Decode(bytes.NewReader(second))
	assert.NoError(t, err)
}

func TestPNGRejectsSize(t *testing.T) {
	svc, err := New(appURL, 0)
	require.NoError(t, err)

	for _, size := range []int{-1, MinSize - 1, MaxSize + 1} {
		_, err := svc.PNG(context.Background(), size)
		assert.ErrorIs(t, err, ErrInvalidSize, "size %d", size)
	}
}

func TestNewRequiresURL(t *testing.T) {
	_, err := New("", 4)
	assert.ErrorIs(t, err, ErrAppURLMissing)
}
