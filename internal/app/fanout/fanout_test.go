package fanout_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/printcraft/customizer-engine/internal/app/fanout"
)

func TestRun_NoItems(t *testing.T) {
	t.Parallel()

	results := fanout.Run(t.Context(), 4, []string{}, func(_ context.Context, _ string) (string, error) {
		t.Fatal("worker ran with no items")
		return "", nil
	})

	if results == nil || len(results) != 0 {
		t.Fatalf("results = %#v, want empty non-nil slice", results)
	}
}

func TestRun_ResultsAlignWithInputs(t *testing.T) {
	t.Parallel()

	urls := []string{
		"https://img.example.com/spring.png",
		"https://img.example.com/summer.png",
		"https://img.example.com/autumn.png",
		"https://img.example.com/winter.png",
	}

	results := fanout.Run(t.Context(), 2, urls, func(_ context.Context, u string) (string, error) {
		return strings.TrimPrefix(u, "https://img.example.com/"), nil
	})

	if len(results) != len(urls) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(urls))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Errorf("results[%d].Err = %v", i, r.Err)
		}
		if want := strings.TrimPrefix(urls[i], "https://img.example.com/"); r.Value != want {
			t.Errorf("results[%d].Value = %q, want %q", i, r.Value, want)
		}
	}
}

func TestRun_OneFailureDoesNotPoisonTheRest(t *testing.T) {
	t.Parallel()

	errOrigin := errors.New("origin returned 404")

	results := fanout.Run(t.Context(), 3, []int{0, 1, 2}, func(_ context.Context, n int) (string, error) {
		if n == 1 {
			return "", errOrigin
		}
		return fmt.Sprintf("media/img-%d.png", n), nil
	})

	if results[0].Err != nil || results[0].Value != "media/img-0.png" {
		t.Errorf("results[0] = {%q, %v}", results[0].Value, results[0].Err)
	}
	if !errors.Is(results[1].Err, errOrigin) {
		t.Errorf("results[1].Err = %v, want %v", results[1].Err, errOrigin)
	}
	if results[2].Err != nil || results[2].Value != "media/img-2.png" {
		t.Errorf("results[2] = {%q, %v}", results[2].Value, results[2].Err)
	}
}

func TestRun_SlotOrderSurvivesUnevenLatency(t *testing.T) {
	t.Parallel()

	delays := []time.Duration{
		40 * time.Millisecond,
		5 * time.Millisecond,
		20 * time.Millisecond,
	}

	results := fanout.Run(t.Context(), len(delays), delays, func(_ context.Context, d time.Duration) (time.Duration, error) {
		time.Sleep(d)
		return d, nil
	})

	// The slowest item finishes last but still lands in slot 0.
	for i, r := range results {
		if r.Err != nil {
			t.Errorf("results[%d].Err = %v", i, r.Err)
		}
		if r.Value != delays[i] {
			t.Errorf("results[%d].Value = %v, want %v", i, r.Value, delays[i])
		}
	}
}

func TestRun_NeverExceedsWorkerBudget(t *testing.T) {
	t.Parallel()

	const workers = 3

	var active, peak atomic.Int32
	items := make([]int, 12)

	results := fanout.Run(t.Context(), workers, items, func(_ context.Context, _ int) (int, error) {
		cur := active.Add(1)
		defer active.Add(-1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		return 0, nil
	})

	if len(results) != len(items) {
		t.Fatalf("got %d results, want %d", len(results), len(items))
	}
	if p := peak.Load(); p > workers {
		t.Fatalf("observed %d concurrent workers, budget is %d", p, workers)
	}
}

func TestRun_CancelShortCircuitsQueuedItems(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())

	// One worker, three items: cancel while the later items still wait
	// for a semaphore slot.
	results := fanout.Run(ctx, 1, []int{1, 2, 3}, func(_ context.Context, n int) (int, error) {
		if n == 1 {
			cancel()
			time.Sleep(50 * time.Millisecond)
		}
		return n, nil
	})

	var canceled int
	for _, r := range results {
		if errors.Is(r.Err, context.Canceled) {
			canceled++
		}
	}
	if canceled == 0 {
		t.Error("no queued item observed the cancellation")
	}
}

func TestRun_CancelVisibleInsideWorker(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	results := fanout.Run(ctx, 1, []int{1}, func(ctx context.Context, _ int) (int, error) {
		cancel()
		return 0, ctx.Err()
	})

	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("results[0].Err = %v, want context.Canceled", results[0].Err)
	}
}

func TestRun_MoreWorkersThanItems(t *testing.T) {
	t.Parallel()

	results := fanout.Run(t.Context(), 64, []int{3, 7}, func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	})

	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].Value != 6 || results[1].Value != 14 {
		t.Errorf("results = [%d, %d], want [6, 14]", results[0].Value, results[1].Value)
	}
}
