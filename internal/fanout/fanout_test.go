package fanout

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestGatherKeepsOrderAndIsolatesFailures(t *testing.T) {
	inputs := []int{1, 2, 3, 4}
	outcomes := Gather(context.Background(), inputs, func(ctx context.Context, n int) (string, error) {
		// Later inputs finish first.
		time.Sleep(time.Duration(5-n) * time.Millisecond)
		if n == 3 {
			return "", fmt.Errorf("input %d failed", n)
		}
		return fmt.Sprintf("v%d", n), nil
	})

	if len(outcomes) != 4 {
		t.Fatalf("got %d outcomes, want 4", len(outcomes))
	}
	for i, want := range []string{"v1", "v2", "", "v4"} {
		if outcomes[i].Value != want {
			t.Errorf("outcomes[%d].Value = %q, want %q", i, outcomes[i].Value, want)
		}
	}
	if outcomes[2].Err == nil {
		t.Errorf("outcomes[2] should carry the error")
	}

	values, errs := Partition(outcomes)
	if len(values) != 3 || values[2] != "v4" {
		t.Errorf("values = %v", values)
	}
	if len(errs) != 1 {
		t.Errorf("errs = %v", errs)
	}
}

func TestGatherRunsConcurrently(t *testing.T) {
	var running, peak int32
	inputs := make([]int, 8)
	Gather(context.Background(), inputs, func(ctx context.Context, _ int) (struct{}, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return struct{}{}, nil
	})
	if peak < 2 {
		t.Errorf("peak concurrency %d, want tasks to overlap", peak)
	}
}

func TestGatherEmpty(t *testing.T) {
	outcomes := Gather(context.Background(), []string(nil), func(ctx context.Context, s string) (int, error) {
		t.Fatalf("fn called for empty input")
		return 0, nil
	})
	if len(outcomes) != 0 {
		t.Errorf("got %d outcomes", len(outcomes))
	}
}

func TestAll(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")
	var ran int32

	err := All(context.Background(),
		func(ctx context.Context) error { atomic.AddInt32(&ran, 1); return errA },
		func(ctx context.Context) error { atomic.AddInt32(&ran, 1); return nil },
		func(ctx context.Context) error { atomic.AddInt32(&ran, 1); return errB },
	)
	if ran != 3 {
		t.Errorf("ran %d tasks, want 3", ran)
	}
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("All error = %v, want both errors joined", err)
	}

	if err := All(context.Background(), func(ctx context.Context) error { return nil }); err != nil {
		t.Errorf("All error = %v, want nil", err)
	}
}
