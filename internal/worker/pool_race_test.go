package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/chatmma/analyst-tracker/internal/models"
)

func TestPool_RaceCondition(t *testing.T) {
	var calls atomic.Int64
	p := NewPool(PoolConfig{
		WorkerCount: 4,
		QueueSize:   1000,
		JobTimeout:  time.Second,
		Logger:      zap.NewNop(),
		Extract: func(ctx context.Context, url, text string) (*models.ExtractionReview, error) {
			calls.Add(1)
			time.Sleep(time.Millisecond)
			return &models.ExtractionReview{SourceURL: url}, nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted []*models.ExtractionJob
	)
	producers := 10
	jobsPerProducer := 20

	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < jobsPerProducer; j++ {
				job, ok := p.Enqueue(fmt.Sprintf("https://example.com/%d/%d", i, j), "")
				if !ok {
					continue
				}
				mu.Lock()
				accepted = append(accepted, job)
				mu.Unlock()
				// readers race with the workers' updates
				p.Get(job.ID)
			}
		}(i)
	}
	wg.Wait()

	for _, j := range accepted {
		waitFinished(t, p, j)
	}
	p.Stop()

	if int(calls.Load()) != len(accepted) {
		t.Errorf("extract called %d times for %d accepted jobs", calls.Load(), len(accepted))
	}
}
