package util

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mkm-lab/analysis-engine/pkg/common"
)

func TestRetryBackoffWithContext_RetriesTransient(t *testing.T) {
	calls := 0
	result, err := RetryBackoffWithContext(context.Background(), 3, time.Millisecond, func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, common.Transient(errors.New("connection reset"))
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("RetryBackoffWithContext() error = %v", err)
	}
	if result != 42 {
		t.Errorf("result = %d, want 42", result)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryBackoffWithContext_StopsOnPermanentError(t *testing.T) {
	permanent := errors.New("bad input")
	calls := 0
	_, err := RetryBackoffWithContext(context.Background(), 5, time.Millisecond, func(ctx context.Context) (int, error) {
		calls++
		return 0, permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("error = %v, want %v", err, permanent)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryBackoffWithContext_ExhaustsAttempts(t *testing.T) {
	transient := common.Transient(errors.New("timeout"))
	calls := 0
	_, err := RetryBackoffWithContext(context.Background(), 3, time.Millisecond, func(ctx context.Context) (int, error) {
		calls++
		return 0, transient
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if !common.IsTransient(err) {
		t.Errorf("expected last transient error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryBackoffWithContext_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := RetryBackoffWithContext(ctx, 3, time.Millisecond, func(ctx context.Context) (int, error) {
		calls++
		return 0, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestRetryErrBackoffWithContext(t *testing.T) {
	calls := 0
	err := RetryErrBackoffWithContext(context.Background(), 2, time.Millisecond, func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return common.Transient(errors.New("flaky"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RetryErrBackoffWithContext() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}
