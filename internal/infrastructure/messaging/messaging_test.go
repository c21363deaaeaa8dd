package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoffConfig_CalculateBackoff(t *testing.T) {
	cfg := BackoffConfig{Initial: time.Second, Max: 10 * time.Second, Multiplier: 2}

	assert.Equal(t, time.Second, cfg.CalculateBackoff(0))
	assert.Equal(t, 4*time.Second, cfg.CalculateBackoff(2))
	assert.Equal(t, 10*time.Second, cfg.CalculateBackoff(5))
}

func TestProducerConsumer_ArticleGen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := NewConsumer(rdb, ConsumerConfig{
		Stream:       StreamArticleGen,
		Group:        ConsumerGroupArticleWorker,
		ConsumerName: "worker-1",
		BlockTimeout: 50 * time.Millisecond,
	})

	received := make(chan ArticleGenMessage, 1)
	consumer.RegisterHandler(TypeArticleGen, func(ctx context.Context, msg *Message) error {
		var payload ArticleGenMessage
		if err := msg.UnmarshalPayload(&payload); err != nil {
			return err
		}
		received <- payload
		return nil
	})
	require.NoError(t, consumer.Start(ctx))
	defer consumer.Stop()

	producer := NewProducer(rdb, 0)
	_, err := producer.PublishArticleGen(ctx, &ArticleGenMessage{
		JobID:          "job-1",
		TenantID:       "t1",
		CategoryID:     "travel",
		WriterID:       "w1",
		ImagePatternID: "p1",
		Trigger:        "manual",
		RequestID:      "req-1",
	})
	require.NoError(t, err)

	select {
	case got := <-received:
		assert.Equal(t, "job-1", got.JobID)
		assert.Equal(t, "travel", got.CategoryID)
		assert.Equal(t, "p1", got.ImagePatternID)
	case <-time.After(3 * time.Second):
		t.Fatal("message not consumed")
	}
}

func TestConsumer_StartTwice(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := NewConsumer(rdb, ConsumerConfig{
		Stream:       StreamArticleGen,
		Group:        ConsumerGroupArticleWorker,
		ConsumerName: "worker-1",
		BlockTimeout: 50 * time.Millisecond,
	})
	require.NoError(t, consumer.Start(ctx))
	defer consumer.Stop()

	assert.Error(t, consumer.Start(ctx))
}

func TestDispatch_RecoversHandlerPanic(t *testing.T) {
	msg, err := NewMessage("job-9", TypeArticleGen, "t1", ArticleGenMessage{JobID: "job-9"})
	require.NoError(t, err)

	err = dispatch(context.Background(), func(context.Context, *Message) error {
		panic("slice bounds out of range")
	}, msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slice bounds out of range")

	assert.NoError(t, dispatch(context.Background(), func(context.Context, *Message) error { return nil }, msg))
}

func TestConsumer_SurvivesPanickingJob(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := NewConsumer(rdb, ConsumerConfig{
		Stream:       StreamArticleGen,
		Group:        ConsumerGroupArticleWorker,
		ConsumerName: "worker-1",
		BlockTimeout: 50 * time.Millisecond,
	})

	done := make(chan string, 1)
	consumer.RegisterHandler(TypeArticleGen, func(ctx context.Context, msg *Message) error {
		var payload ArticleGenMessage
		if err := msg.UnmarshalPayload(&payload); err != nil {
			return err
		}
		if payload.JobID == "job-bad" {
			panic("corrupt draft")
		}
		done <- payload.JobID
		return nil
	})
	require.NoError(t, consumer.Start(ctx))
	defer consumer.Stop()

	producer := NewProducer(rdb, 0)
	for _, id := range []string{"job-bad", "job-good"} {
		_, err := producer.PublishArticleGen(ctx, &ArticleGenMessage{JobID: id, TenantID: "t1", CategoryID: "travel"})
		require.NoError(t, err)
	}

	select {
	case got := <-done:
		assert.Equal(t, "job-good", got)
	case <-time.After(3 * time.Second):
		t.Fatal("consumer stopped after a panicking job")
	}
}
