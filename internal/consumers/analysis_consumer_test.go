package consumers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/sentisocial/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisConsumerHandlesAndCommits(t *testing.T) {
	store := newFakeStore()
	store.put(models.ContentKindPost, 1, "hello")
	store.put(models.ContentKindComment, 2, "this is awful")
	analyzer := &fakeAnalyzer{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	source := &fakeSource{cancel: cancel, messages: []*kafka.Message{
		taskMessage(1, task(models.ContentKindPost, 1, "hello")),
		{Value: []byte("not json")},
		taskMessage(3, task(models.ContentKindComment, 2, "this is awful")),
	}}

	consumer := NewAnalysisConsumer(newTestHandler(store, analyzer), nil)
	require.NoError(t, consumer.StartAnalysisConsumer(ctx, source))

	assert.Len(t, source.committed, 3)
	assert.Equal(t, 2, analyzer.callCount())
	_, ok := store.fieldsFor(2)
	assert.True(t, ok)
}

func TestAnalysisConsumerSkipsProcessedTasks(t *testing.T) {
	store := newFakeStore()
	store.put(models.ContentKindPost, 1, "hello")
	analyzer := &fakeAnalyzer{}
	dedupe := &fakeDeduper{processed: map[string]bool{}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	source := &fakeSource{cancel: cancel, messages: []*kafka.Message{
		taskMessage(1, task(models.ContentKindPost, 1, "hello")),
		taskMessage(2, task(models.ContentKindPost, 1, "hello")),
	}}

	consumer := NewAnalysisConsumer(newTestHandler(store, analyzer), dedupe)
	require.NoError(t, consumer.StartAnalysisConsumer(ctx, source))

	assert.Equal(t, 1, analyzer.callCount())
	assert.Len(t, source.committed, 2)
}

func TestAnalysisConsumerPausesWhileUnhealthy(t *testing.T) {
	store := newFakeStore()
	store.put(models.ContentKindPost, 1, "hello")
	analyzer := &fakeAnalyzer{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	source := &fakeSource{cancel: cancel, messages: []*kafka.Message{
		taskMessage(1, task(models.ContentKindPost, 1, "hello")),
	}}

	var healthy atomic.Bool
	consumer := NewAnalysisConsumer(newTestHandler(store, analyzer), nil)
	consumer.pause = time.Millisecond

	done := make(chan error, 1)
	go func() { done <- consumer.StartAnalysisConsumer(ctx, source, &healthy) }()

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, analyzer.callCount())

	healthy.Store(true)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not finish")
	}
	assert.Equal(t, 1, analyzer.callCount())
}

func TestWrapConsumerPassesHealthFlags(t *testing.T) {
	var a, b atomic.Bool
	a.Store(true)
	var got []*atomic.Bool
	wrapped := WrapConsumer(func(_ context.Context, _ MessageSource, health ...*atomic.Bool) error {
		got = health
		return nil
	}, &a).WithHealthCheck(&b)

	require.NoError(t, wrapped.Handler()(context.Background(), nil))
	assert.Equal(t, []*atomic.Bool{&a, &b}, got)
	assert.False(t, allHealthy(got))
	b.Store(true)
	assert.True(t, allHealthy(got))
}

func TestWithHealthCheckDoesNotShareFlags(t *testing.T) {
	var a, b, c, d atomic.Bool
	noop := func(context.Context, MessageSource, ...*atomic.Bool) error { return nil }

	base := WrapConsumer(noop, &a, &b).WithHealthCheck(&c)
	first := base.WithHealthCheck(&d)
	second := base.WithHealthCheck(&a)

	assert.Equal(t, []*atomic.Bool{&a, &b, &c}, base.health)
	assert.Equal(t, []*atomic.Bool{&a, &b, &c, &d}, first.health)
	assert.Equal(t, []*atomic.Bool{&a, &b, &c, &a}, second.health)
}
