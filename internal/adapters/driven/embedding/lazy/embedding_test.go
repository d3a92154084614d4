package lazy

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

type stubEmbedder struct {
	closed atomic.Bool
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text))}, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = s.Embed(ctx, t)
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int              { return 1 }
func (s *stubEmbedder) ModelName() string            { return "stub" }
func (s *stubEmbedder) Ping(_ context.Context) error { return nil }
func (s *stubEmbedder) Close() error {
	s.closed.Store(true)
	return nil
}

func TestLazy_NotInitialisedUntilUsed(t *testing.T) {
	var calls atomic.Int32
	svc := New("stub:model", 7, func(context.Context) (driven.EmbeddingService, error) {
		calls.Add(1)
		return &stubEmbedder{}, nil
	})

	assert.False(t, svc.Initialised())
	assert.Equal(t, 7, svc.Dimensions())
	assert.Equal(t, "stub:model", svc.ModelName())
	assert.Equal(t, int32(0), calls.Load())

	vec, err := svc.Embed(context.Background(), "abc")

	require.NoError(t, err)
	assert.Equal(t, []float32{3}, vec)
	assert.True(t, svc.Initialised())
	assert.Equal(t, 1, svc.Dimensions())
}

func TestLazy_ConcurrentCallersShareOneInit(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	svc := New("stub", 1, func(context.Context) (driven.EmbeddingService, error) {
		calls.Add(1)
		<-release
		return &stubEmbedder{}, nil
	})

	const callers = 16
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Embed(context.Background(), "x")
			errs <- err
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestLazy_CancelledCallerDoesNotFailLoad(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	svc := New("stub", 1, func(ctx context.Context) (driven.EmbeddingService, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return &stubEmbedder{}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() { first <- svc.Warm(ctx) }()

	<-started
	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	close(release)
	_, err := svc.Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, svc.Initialised())
	assert.Equal(t, int32(1), calls.Load())
}

func TestLazy_FailureNotCached(t *testing.T) {
	var calls atomic.Int32
	svc := New("stub", 1, func(context.Context) (driven.EmbeddingService, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("download failed")
		}
		return &stubEmbedder{}, nil
	})

	_, err := svc.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Contains(t, err.Error(), "download failed")
	assert.False(t, svc.Initialised())

	_, err = svc.EmbedBatch(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestLazy_WarmAndPing(t *testing.T) {
	svc := New("stub", 1, func(context.Context) (driven.EmbeddingService, error) {
		return &stubEmbedder{}, nil
	})

	require.NoError(t, svc.Warm(context.Background()))
	assert.True(t, svc.Initialised())
	assert.NoError(t, svc.Ping(context.Background()))
}

func TestLazy_Close(t *testing.T) {
	inner := &stubEmbedder{}
	svc := New("stub", 1, func(context.Context) (driven.EmbeddingService, error) {
		return inner, nil
	})

	assert.NoError(t, svc.Close())
	assert.False(t, inner.closed.Load())

	require.NoError(t, svc.Warm(context.Background()))
	assert.NoError(t, svc.Close())
	assert.True(t, inner.closed.Load())
	assert.False(t, svc.Initialised())
}
