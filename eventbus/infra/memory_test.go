package infra

import (
	"context"
	"errors"
	"testing"
	"time"

	"coordination-gateway/eventbus/domain"
)

func nextOrFail(t *testing.T, d domain.Deliveries) domain.Delivery {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := d.Next(ctx)
	if err != nil {
		t.Fatalf("unexpected error from Next: %v", err)
	}
	return got
}

func TestMemoryBroker_ExactSubscribeDeliversMessage(t *testing.T) {
	b := NewMemoryBroker()

	sub, err := b.Subscribe(context.Background(), "test_bus/chan1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = sub.Close() }()

	// primeiro frame é a confirmação, como no Redis
	if d := nextOrFail(t, sub); d.Type != domain.KindSubscribe {
		t.Fatalf("expected subscribe frame first, got %q", d.Type)
	}

	if err := b.Publish(context.Background(), "test_bus/chan1", `{"payload":{}}`); err != nil {
		t.Fatalf("unexpected publish error: %v", err)
	}

	d := nextOrFail(t, sub)
	if d.Type != domain.KindMessage {
		t.Fatalf("expected message frame, got %q", d.Type)
	}
	if d.Channel != "test_bus/chan1" || d.Pattern != "" {
		t.Fatalf("unexpected delivery envelope: %+v", d)
	}
}

func TestMemoryBroker_PatternSubscribeDeliversPMessage(t *testing.T) {
	b := NewMemoryBroker()

	sub, err := b.Subscribe(context.Background(), "test_bus/*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = sub.Close() }()

	if d := nextOrFail(t, sub); d.Type != domain.KindPSubscribe {
		t.Fatalf("expected psubscribe frame first, got %q", d.Type)
	}

	_ = b.Publish(context.Background(), "test_bus/chan7", "x")

	d := nextOrFail(t, sub)
	if d.Type != domain.KindPMessage {
		t.Fatalf("expected pmessage frame, got %q", d.Type)
	}
	if d.Pattern != "test_bus/*" || d.Channel != "test_bus/chan7" {
		t.Fatalf("unexpected delivery envelope: %+v", d)
	}
}

func TestMemoryBroker_UnrelatedChannelNotDelivered(t *testing.T) {
	b := NewMemoryBroker()

	sub, _ := b.Subscribe(context.Background(), "test_bus/chan1")
	defer func() { _ = sub.Close() }()
	_ = nextOrFail(t, sub) // frame de confirmação

	_ = b.Publish(context.Background(), "other_bus/chan1", "x")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if d, err := sub.Next(ctx); err == nil {
		t.Fatalf("expected no delivery, got %+v", d)
	}
}

func TestMemoryBroker_ClosedSubscriptionReturnsErrClosed(t *testing.T) {
	b := NewMemoryBroker()

	sub, _ := b.Subscribe(context.Background(), "test_bus/chan1")
	_ = sub.Close()

	// drena a confirmação já enfileirada e espera ErrClosed na sequência
	for {
		_, err := sub.Next(context.Background())
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrClosed) {
			t.Fatalf("expected ErrClosed, got %v", err)
		}
		break
	}

	// assinatura encerrada não recebe mais nada
	if err := b.Publish(context.Background(), "test_bus/chan1", "x"); err != nil {
		t.Fatalf("publish to a live broker must not fail: %v", err)
	}
}

func TestMemoryBroker_PublishAfterCloseFails(t *testing.T) {
	b := NewMemoryBroker()
	_ = b.Close()

	if err := b.Publish(context.Background(), "test_bus/chan1", "x"); !errors.Is(err, domain.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestMatchPattern(t *testing.T) {
	cases := []struct {
		pattern, channel string
		want             bool
	}{
		{"test_bus/*", "test_bus/chan1", true},
		{"test_bus/*", "test_bus/", true},
		{"test_bus/*", "other_bus/chan1", false},
		{"*", "anything/at/all", true},
		{"bus/*/done", "bus/run-42/done", true},
		{"bus/*/done", "bus/run-42/failed", false},
		{"exact", "exact", true},
		{"exact", "exact2", false},
	}
	for _, tc := range cases {
		if got := matchPattern(tc.pattern, tc.channel); got != tc.want {
			t.Errorf("matchPattern(%q, %q) = %v, want %v", tc.pattern, tc.channel, got, tc.want)
		}
	}
}
