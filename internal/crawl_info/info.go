// Package crawlinfo ghi lại kết quả của một lần chạy pipeline.
package crawlinfo

import (
	"sync"
	"time"
)

type Info struct {
	RunID      string        `json:"run_id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration"`

	Partitions    int `json:"partitions"`
	SearchHits    int `json:"search_hits"`
	Duplicates    int `json:"duplicates"`
	Organizations int `json:"organizations"`
	Unique        int `json:"unique"`

	CacheHits int `json:"cache_hits"`
	Fetched   int `json:"fetched"`
	Failed    int `json:"failed"`

	Developers map[string]int `json:"developers"`
	Artifact   string         `json:"artifact"`
	Error      string         `json:"error,omitempty"`
}

func New(runID string, startedAt time.Time) *Info {
	return &Info{
		RunID:      runID,
		StartedAt:  startedAt,
		Developers: make(map[string]int),
	}
}

func (i *Info) Finish(at time.Time, err error) {
	i.FinishedAt = at
	i.Duration = at.Sub(i.StartedAt)
	if err != nil {
		i.Error = err.Error()
	}
}

func (i *Info) Succeeded() bool {
	return !i.FinishedAt.IsZero() && i.Error == ""
}

func (i *Info) Total() int {
	total := 0
	for _, n := range i.Developers {
		total += n
	}
	return total
}

// History giữ các lần chạy gần nhất cho scheduler
type History struct {
	mu   sync.RWMutex
	max  int
	runs []Info
}

func NewHistory(max int) *History {
	if max <= 0 {
		max = 10
	}
	return &History{max: max}
}

func (h *History) Add(info *Info) {
	if info == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.runs = append(h.runs, *info)
	if len(h.runs) > h.max {
		h.runs = h.runs[len(h.runs)-h.max:]
	}
}

func (h *History) Last() (Info, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.runs) == 0 {
		return Info{}, false
	}
	return h.runs[len(h.runs)-1], true
}

// Runs trả về bản sao, mới nhất ở cuối
func (h *History) Runs() []Info {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Info, len(h.runs))
	copy(out, h.runs)
	return out
}
