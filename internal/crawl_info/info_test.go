package crawlinfo

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfo_Finish(t *testing.T) {
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	info := New("run-1", start)
	info.Developers["code"] = 3
	info.Developers["markdown"] = 1

	assert.False(t, info.Succeeded())
	info.Finish(start.Add(90*time.Second), nil)
	assert.True(t, info.Succeeded())
	assert.Equal(t, 90*time.Second, info.Duration)
	assert.Equal(t, 4, info.Total())

	failed := New("run-2", start)
	failed.Finish(start.Add(time.Second), errors.New("search aborted"))
	assert.False(t, failed.Succeeded())
	assert.Equal(t, "search aborted", failed.Error)
}

func TestHistory_KeepsMostRecent(t *testing.T) {
	h := NewHistory(2)
	_, ok := h.Last()
	assert.False(t, ok)

	for _, id := range []string{"a", "b", "c"} {
		h.Add(New(id, time.Now()))
	}
	h.Add(nil)

	runs := h.Runs()
	require.Len(t, runs, 2)
	assert.Equal(t, "b", runs[0].RunID)

	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, "c", last.RunID)
}
