package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaries(t *testing.T) {
	tt := NewTracker()
	tt.Record("edges", 30*time.Millisecond)
	tt.Record("denoise", 10*time.Millisecond)
	tt.Record("denoise", 30*time.Millisecond)

	got := tt.Summaries()
	require.Len(t, got, 2)
	assert.Equal(t, Summary{
		Operation: "denoise",
		Count:     2,
		Total:     40 * time.Millisecond,
		Mean:      20 * time.Millisecond,
		Max:       30 * time.Millisecond,
	}, got[0])
	assert.Equal(t, "edges", got[1].Operation)

	assert.Empty(t, NewTracker().Summaries())
}

func TestStartRecords(t *testing.T) {
	tt := NewTracker()
	stop := tt.Start("gradient")
	d := stop()

	got := tt.Summaries()
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Count)
	assert.Equal(t, d, got[0].Total)
}
