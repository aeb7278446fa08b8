package infra

import (
	"context"
	"testing"
	"time"
)

func TestChanPool_AcquireAndRelease(t *testing.T) {
	p := NewChanPool(1)

	release, ok := p.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected to acquire the only slot")
	}

	// segunda aquisição só depois do release
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, ok := p.Acquire(ctx); ok {
		t.Fatalf("expected second acquire to fail while slot is held")
	}

	release()
	release2, ok := p.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected acquire to succeed after release")
	}
	release2()
}

func TestChanPool_CancelledContextNeverAcquires(t *testing.T) {
	p := NewChanPool(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// mesmo com vaga sobrando, ctx cancelado não adquire
	if _, ok := p.Acquire(ctx); ok {
		t.Fatalf("expected cancelled context not to acquire a free slot")
	}
}
