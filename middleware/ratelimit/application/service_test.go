package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"coordination-gateway/middleware/ratelimit/domain"
)

type fakeChecker struct {
	dec domain.Decision
	err error

	gotIdentity string
}

func (f *fakeChecker) Check(_ context.Context, identity string) (domain.Decision, error) {
	f.gotIdentity = identity
	return f.dec, f.err
}

func TestService_Decide_AllowsWhenNoChecker(t *testing.T) {
	svc := Service{}

	dec, err := svc.Decide(context.Background(), "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.Allowed {
		t.Fatalf("expected allowed")
	}
	now := time.Now().Unix()
	if dec.ResetAt < now || dec.ResetAt > now+61 {
		t.Fatalf("expected ResetAt within [now, now+61], got %d (now=%d)", dec.ResetAt, now)
	}
}

func TestService_Decide_PassesDecisionThrough(t *testing.T) {
	want := domain.Decision{Allowed: true, Remaining: 4, ResetAt: 1700000060}
	fc := &fakeChecker{dec: want}
	svc := Service{Checker: fc}

	dec, err := svc.Decide(context.Background(), "my-api-key-id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec != want {
		t.Fatalf("expected %+v, got %+v", want, dec)
	}
	if fc.gotIdentity != "my-api-key-id" {
		t.Fatalf("expected identity to reach checker, got %q", fc.gotIdentity)
	}
}

func TestService_Decide_PropagatesStoreError(t *testing.T) {
	boom := errors.New("redis down")
	svc := Service{Checker: &fakeChecker{err: boom}}

	_, err := svc.Decide(context.Background(), "k")
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error to propagate untouched, got %v", err)
	}
}
