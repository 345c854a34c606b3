package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/github-ranking/cfg"
	"github.com/thep200/github-ranking/pkg/log"
)

type fakeWriter struct {
	written []kafka.Message
	err     error
	closed  bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeReader struct {
	messages []kafka.Message
	cancel   context.CancelFunc
	closed   bool
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.messages) == 0 {
		r.cancel()
		return kafka.Message{}, context.Canceled
	}
	m := r.messages[0]
	r.messages = r.messages[1:]
	return m, nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func TestProducer_PublishBatch(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{Logger: log.NewNopLogger(), writer: w}

	err := p.PublishBatch(context.Background(), []Message{
		{Key: "a", Value: map[string]int{"followers": 1}},
		{Key: "b", Value: map[string]int{"followers": 2}},
	})
	require.NoError(t, err)
	require.Len(t, w.written, 2)
	assert.Equal(t, "b", string(w.written[1].Key))

	var decoded map[string]int
	require.NoError(t, json.Unmarshal(w.written[1].Value, &decoded))
	assert.Equal(t, 2, decoded["followers"])

	assert.NoError(t, p.PublishBatch(context.Background(), nil))
	assert.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestProducer_WriteError(t *testing.T) {
	p := &Producer{Logger: log.NewNopLogger(), writer: &fakeWriter{err: errors.New("broker down")}}
	err := p.Publish(context.Background(), "a", 1)
	assert.ErrorContains(t, err, "broker down")
}

func TestNewProducer_NoBrokers(t *testing.T) {
	_, err := NewProducer(&cfg.Config{}, log.NewNopLogger(), "topic")
	assert.Error(t, err)

	_, err = NewConsumer(&cfg.Config{}, log.NewNopLogger(), "topic", "group")
	assert.Error(t, err)
}

func TestConsumer_Start(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &fakeReader{
		cancel: cancel,
		messages: []kafka.Message{
			{Key: []byte("a"), Value: []byte(`1`)},
			{Key: []byte("b"), Value: []byte(`2`)},
		},
	}
	c := &Consumer{Logger: log.NewNopLogger(), topic: "t", reader: r}

	var keys []string
	c.RegisterHandler(func(_ context.Context, key string, _ []byte) error {
		keys = append(keys, key)
		if key == "b" {
			return errors.New("handler failure is logged, not fatal")
		}
		return nil
	})

	require.NoError(t, c.Start(ctx))
	assert.Equal(t, []string{"a", "b"}, keys)
	assert.True(t, r.closed)
}

func TestConsumer_NoHandler(t *testing.T) {
	c := &Consumer{Logger: log.NewNopLogger(), topic: "t", reader: &fakeReader{}}
	assert.Error(t, c.Start(context.Background()))
}
