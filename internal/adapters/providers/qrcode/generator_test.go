package qrcode_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nagoyameshi/backend/internal/adapters/providers/qrcode"
)

func TestGenerator_Generate(t *testing.T) {
	png, err := qrcode.NewGenerator(0).Generate("http://localhost:8080/reservations/resv-1")

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
