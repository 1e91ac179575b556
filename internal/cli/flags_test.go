package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	d, err := parseMoney("price", " 12.50 ")
	require.NoError(t, err)
	assert.Equal(t, "12.5", d.String())

	d, err = parseMoney("tax", "")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = parseMoney("price", "12,50")
	require.Error(t, err)
	assert.ErrorIs(t, err, errBadInput)
	assert.Contains(t, err.Error(), "--price")
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		in      string
		id      string
		qty     int64
		wantErr bool
	}{
		{in: "PROD-1", id: "PROD-1", qty: 1},
		{in: "PROD-1:4", id: "PROD-1", qty: 4},
		{in: " PROD-1:2 ", id: "PROD-1", qty: 2},
		{in: "", wantErr: true},
		{in: ":3", wantErr: true},
		{in: "PROD-1:0", wantErr: true},
		{in: "PROD-1:-2", wantErr: true},
		{in: "PROD-1:two", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			id, qty, err := parseLine(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, errBadInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, id)
			assert.Equal(t, tt.qty, qty)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Feeding B…", truncate("Feeding Bottle", 10))
	assert.Equal(t, "Ŋkɔ…", truncate("Ŋkɔmɔ", 4))
	assert.Equal(t, "a", truncate("abc", 1))
}
