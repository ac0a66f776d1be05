// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tuneisland/internal/recommend"
)

// mockRecommendEngine is a mock implementation for testing.
type mockRecommendEngine struct {
	mu         sync.Mutex
	trainCalls int
	trainErr   error
	trainDelay time.Duration
	deadlines  []time.Duration
}

func (m *mockRecommendEngine) Train(ctx context.Context) error {
	m.mu.Lock()
	m.trainCalls++
	if d, ok := ctx.Deadline(); ok {
		m.deadlines = append(m.deadlines, time.Until(d))
	}
	m.mu.Unlock()

	if m.trainDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.trainDelay):
		}
	}

	return m.trainErr
}

func (m *mockRecommendEngine) getTrainCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trainCalls
}

func TestRecommendService_String(t *testing.T) {
	t.Parallel()

	service := NewRecommendService(&mockRecommendEngine{}, RecommendServiceConfig{}, zerolog.Nop())
	if got := service.String(); got != "recommend-service" {
		t.Errorf("String() = %q, want %q", got, "recommend-service")
	}
	if service.config.TrainInterval != 24*time.Hour || service.config.TrainTimeout != 30*time.Minute {
		t.Errorf("defaults = %+v", service.config)
	}
}

func TestRecommendService_Startup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		trainOnStartup bool
		trainErr       error
		want           int
	}{
		{"trains on startup", true, nil, 1},
		{"no startup training", false, nil, 0},
		{"startup failure does not stop service", true, errors.New("boom"), 1},
		{"empty data is skipped", true, recommend.ErrDataEmpty, 1},
		{"overlapping cycle is skipped", true, recommend.ErrTrainingInProgress, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine := &mockRecommendEngine{trainErr: tt.trainErr}
			service := NewRecommendService(engine, RecommendServiceConfig{
				TrainOnStartup: tt.trainOnStartup,
				TrainInterval:  time.Hour,
			}, zerolog.Nop())

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			if err := service.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("Serve() = %v, want context deadline", err)
			}
			if got := engine.getTrainCalls(); got != tt.want {
				t.Errorf("Train() called %d times, want %d", got, tt.want)
			}
		})
	}
}

func TestRecommendService_ScheduledTraining(t *testing.T) {
	t.Parallel()

	engine := &mockRecommendEngine{}
	service := NewRecommendService(engine, RecommendServiceConfig{
		TrainInterval: 50 * time.Millisecond,
	}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 180*time.Millisecond)
	defer cancel()

	_ = service.Serve(ctx)

	if got := engine.getTrainCalls(); got < 2 {
		t.Errorf("Train() called %d times, want >= 2", got)
	}
}

func TestRecommendService_TrainTimeout(t *testing.T) {
	t.Parallel()

	engine := &mockRecommendEngine{}
	service := NewRecommendService(engine, RecommendServiceConfig{
		TrainOnStartup: true,
		TrainInterval:  time.Hour,
		TrainTimeout:   5 * time.Minute,
	}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = service.Serve(ctx)

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if len(engine.deadlines) != 1 {
		t.Fatalf("deadlines = %v", engine.deadlines)
	}
	// The Serve context's 50ms deadline is the tighter bound.
	if engine.deadlines[0] > time.Second {
		t.Errorf("cycle deadline %v should be bounded by the Serve context", engine.deadlines[0])
	}
}

func TestRecommendService_GracefulShutdown(t *testing.T) {
	t.Parallel()

	engine := &mockRecommendEngine{trainDelay: time.Second}
	service := NewRecommendService(engine, RecommendServiceConfig{
		TrainOnStartup: true,
		TrainInterval:  time.Hour,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- service.Serve(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve() did not complete in time")
	}
}
