package entity

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatterhub/internal/config"
	"chatterhub/internal/domain"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImageService(t *testing.T) {
	ctx := context.Background()
	svc := NewImageService(newTestStore(), testLogger())

	data := pngBytes(t)
	img, err := svc.CreateImage(ctx, "g1", data)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MimeType)

	got, err := svc.GetImage(ctx, img.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, data, got.Data)

	list, err := svc.ListByChatGroup(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteImage(ctx, img.ID))
	got, err = svc.GetImage(ctx, img.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestImageService_Rejects(t *testing.T) {
	ctx := context.Background()
	svc := NewImageService(newTestStore(), testLogger())

	tests := []struct {
		name        string
		chatGroupID string
		data        []byte
	}{
		{"missing chat group", "", pngBytes(t)},
		{"empty data", "g1", nil},
		{"not an image", "g1", []byte("%PDF-1.7\n1 0 obj\n")},
		{"plain text", "g1", []byte("hello there")},
		{"too large", "g1", append(pngBytes(t), make([]byte, config.MaxImageBytes)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateImage(ctx, tt.chatGroupID, tt.data)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}
