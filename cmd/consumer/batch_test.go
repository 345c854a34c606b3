package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/github-ranking/internal/model"
	"github.com/thep200/github-ranking/pkg/log"
)

type recordingSaver struct {
	mu      sync.Mutex
	batches [][]model.DeveloperMessage
}

func (s *recordingSaver) CreateBatch(ctx context.Context, messages []model.DeveloperMessage) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, append([]model.DeveloperMessage(nil), messages...))
	return nil
}

func (s *recordingSaver) sizes() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int
	for _, b := range s.batches {
		out = append(out, len(b))
	}
	return out
}

func msg(login string) model.DeveloperMessage {
	return model.DeveloperMessage{RunID: "r", Developer: model.Developer{Login: login}}
}

func TestProcessBatched_SizeAndShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	messages := make(chan model.DeveloperMessage, 10)
	saver := &recordingSaver{}
	done := make(chan struct{})

	go func() {
		defer close(done)
		processBatched(ctx, messages, 2, time.Hour, log.NewNopLogger(), saver)
	}()

	messages <- msg("a")
	messages <- msg("b")
	messages <- msg("c")

	require.Eventually(t, func() bool { return len(saver.sizes()) == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, []int{2, 1}, saver.sizes())
}

func TestProcessBatched_Timeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	messages := make(chan model.DeveloperMessage, 10)
	saver := &recordingSaver{}

	go processBatched(ctx, messages, 100, 50*time.Millisecond, log.NewNopLogger(), saver)
	messages <- msg("a")

	require.Eventually(t, func() bool { return len(saver.sizes()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []int{1}, saver.sizes())
}
