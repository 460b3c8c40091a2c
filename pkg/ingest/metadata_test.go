package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterMetadata(t *testing.T) {
	in := map[string]interface{}{
		"source":   "guide.pdf",
		"page":     3,
		"score":    0.92,
		"flagged":  true,
		"sections": []string{"a", "b"},
		"nested":   map[string]interface{}{"x": 1},
		"raw":      []byte("bytes"),
	}

	got := FilterMetadata(in)

	assert.Equal(t, map[string]interface{}{
		"source":  "guide.pdf",
		"page":    3,
		"score":   0.92,
		"flagged": true,
	}, got)
}

func TestFilterMetadataEmpty(t *testing.T) {
	assert.Empty(t, FilterMetadata(nil))
	assert.Empty(t, FilterMetadata(map[string]interface{}{}))
}
