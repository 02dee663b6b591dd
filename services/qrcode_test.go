package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultQRGenerator(t *testing.T) {
	g := DefaultQRGenerator{BaseURL: "https://food.example.com"}
	assert.Equal(t, "https://food.example.com/api/orders/42/status", g.TrackingURL(42))

	png, err := g.Generate(42)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
