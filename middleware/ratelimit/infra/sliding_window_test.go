package infra

import (
	"strings"
	"testing"
	"time"
)

func TestWindowKey_Format(t *testing.T) {
	if got := windowKey("my-api-key-id"); got != "ratelimit:my-api-key-id:1min" {
		t.Fatalf("expected ratelimit:my-api-key-id:1min, got %q", got)
	}
}

func TestWindowMember_UniquePerCall(t *testing.T) {
	now := time.Now()

	a := windowMember(now)
	b := windowMember(now)
	if a == b {
		t.Fatalf("expected distinct members for the same instant, got %q twice", a)
	}
	if !strings.Contains(a, "-") {
		t.Fatalf("expected timestamp-suffix member, got %q", a)
	}
}

func TestDecisionAt_UnderLimit(t *testing.T) {
	now := time.Now()

	// 6ª chamada de 10 permitidas: passa com 4 restantes.
	dec := decisionAt(6, 10, now, 60*time.Second)
	if !dec.Allowed {
		t.Fatalf("expected allowed under limit")
	}
	if dec.Remaining != 4 {
		t.Fatalf("expected remaining=4, got %d", dec.Remaining)
	}
	if dec.ResetAt != now.Add(60*time.Second).Unix() {
		t.Fatalf("expected reset at now+60s, got %d", dec.ResetAt)
	}
}

func TestDecisionAt_AtLimitStillAllowed(t *testing.T) {
	dec := decisionAt(10, 10, time.Now(), 60*time.Second)
	if !dec.Allowed {
		t.Fatalf("expected the Nth of N to be allowed")
	}
	if dec.Remaining != 0 {
		t.Fatalf("expected remaining=0 at the limit, got %d", dec.Remaining)
	}
}

func TestDecisionAt_OverLimitBlocked(t *testing.T) {
	dec := decisionAt(11, 10, time.Now(), 60*time.Second)
	if dec.Allowed {
		t.Fatalf("expected the (N+1)th to be blocked")
	}
	if dec.Remaining != 0 {
		t.Fatalf("expected remaining=0 over the limit, got %d", dec.Remaining)
	}
}

func TestDecisionAt_ResetWithinWindowBounds(t *testing.T) {
	before := time.Now().Add(60 * time.Second).Unix()
	dec := decisionAt(1, 10, time.Now(), 60*time.Second)
	after := time.Now().Add(60 * time.Second).Unix()

	if dec.ResetAt < before || dec.ResetAt > after {
		t.Fatalf("expected reset within [%d, %d], got %d", before, after, dec.ResetAt)
	}
}
