package application

import (
	"context"
	"testing"
	"time"
)

type fakePool struct {
	block bool
}

func (p fakePool) Acquire(ctx context.Context) (func(), bool) {
	if !p.block {
		return func() {}, true
	}
	<-ctx.Done()
	return nil, false
}

func TestConcurrencyService_AcquireWithoutPoolAlwaysOk(t *testing.T) {
	svc := ConcurrencyService{}

	release, ok := svc.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected ok without pool")
	}
	release() // não deve entrar em pânico
}

func TestConcurrencyService_AcquireOk(t *testing.T) {
	svc := ConcurrencyService{Pool: fakePool{}}

	release, ok := svc.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected acquire to succeed")
	}
	release()
}

func TestConcurrencyService_AcquireTimesOut(t *testing.T) {
	svc := ConcurrencyService{
		Pool:           fakePool{block: true},
		AcquireTimeout: 10 * time.Millisecond,
	}

	start := time.Now()
	_, ok := svc.Acquire(context.Background())
	if ok {
		t.Fatalf("expected acquire to time out")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("acquire took too long: %s", elapsed)
	}
}
