package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInterval(t *testing.T) {
	t.Run("flag wins over environment", func(t *testing.T) {
		d, err := parseInterval("30m", "6h")
		require.NoError(t, err)
		assert.Equal(t, 30*time.Minute, d)
	})

	t.Run("falls back to environment", func(t *testing.T) {
		d, err := parseInterval(" ", "6h")
		require.NoError(t, err)
		assert.Equal(t, 6*time.Hour, d)
	})

	t.Run("empty means run once", func(t *testing.T) {
		d, err := parseInterval("", "")
		require.NoError(t, err)
		assert.Zero(t, d)
	})

	t.Run("rejects garbage and non-positive values", func(t *testing.T) {
		_, err := parseInterval("soon", "")
		assert.Error(t, err)
		_, err = parseInterval("-5m", "")
		assert.ErrorIs(t, err, errNonPositiveInterval)
	})
}
