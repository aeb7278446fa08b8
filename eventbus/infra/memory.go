package infra

import (
	"context"
	"sync"

	"coordination-gateway/eventbus/domain"
)

// MemoryBroker implementa domain.Broker em processo, para testes e cenários
// single-process.
//
// Imita o comportamento observável do pub/sub do Redis: a assinatura recebe
// primeiro o frame de confirmação (subscribe/psubscribe), depois entregas
// "message" ou "pmessage" conforme o casamento for exato ou por padrão. Sem
// persistência: assinante com buffer cheio perde a mensagem nova.
type MemoryBroker struct {
	mu     sync.RWMutex
	subs   []*memorySub
	buffer int
	closed bool
}

type memorySub struct {
	channelKey string
	pattern    bool
	ch         chan domain.Delivery

	mu     sync.Mutex
	closed bool
	broker *MemoryBroker
}

type MemoryOption func(*MemoryBroker)

// WithMemoryBuffer define o buffer de cada assinatura (padrão 256).
func WithMemoryBuffer(n int) MemoryOption {
	return func(b *MemoryBroker) { b.buffer = n }
}

func NewMemoryBroker(opts ...MemoryOption) *MemoryBroker {
	b := &MemoryBroker{buffer: 256}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *MemoryBroker) Publish(_ context.Context, channelKey, message string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return domain.ErrClosed
	}

	for _, sub := range b.subs {
		var d domain.Delivery
		switch {
		case sub.pattern && matchPattern(sub.channelKey, channelKey):
			d = domain.Delivery{
				Type:    domain.KindPMessage,
				Channel: channelKey,
				Pattern: sub.channelKey,
				Data:    message,
			}
		case !sub.pattern && sub.channelKey == channelKey:
			d = domain.Delivery{
				Type:    domain.KindMessage,
				Channel: channelKey,
				Data:    message,
			}
		default:
			continue
		}

		select {
		case sub.ch <- d:
		default:
			// buffer cheio: descarta a mensagem nova
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, channelKey string) (domain.Deliveries, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, domain.ErrClosed
	}

	sub := &memorySub{
		channelKey: channelKey,
		pattern:    domain.IsPattern(channelKey),
		ch:         make(chan domain.Delivery, b.buffer),
		broker:     b,
	}

	// frame de confirmação, como o Redis envia
	kind := domain.KindSubscribe
	if sub.pattern {
		kind = domain.KindPSubscribe
	}
	sub.ch <- domain.Delivery{Type: kind, Channel: channelKey}

	b.subs = append(b.subs, sub)
	return sub, nil
}

// Close encerra o broker e todas as assinaturas.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.closed = true
	b.mu.Unlock()

	for _, sub := range subs {
		sub.markClosed()
	}
	return nil
}

func (s *memorySub) Next(ctx context.Context) (domain.Delivery, error) {
	select {
	case d, ok := <-s.ch:
		if !ok {
			return domain.Delivery{}, domain.ErrClosed
		}
		return d, nil
	case <-ctx.Done():
		return domain.Delivery{}, ctx.Err()
	}
}

func (s *memorySub) Close() error {
	s.broker.remove(s)
	s.markClosed()
	return nil
}

func (s *memorySub) markClosed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

func (b *MemoryBroker) remove(target *memorySub) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub == target {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// matchPattern casa um canal contra um padrão com curinga '*' (estilo glob do
// Redis, sem classes). '*' casa qualquer sequência, inclusive vazia.
func matchPattern(pattern, channel string) bool {
	// caminho rápido sem curinga
	if !domain.IsPattern(pattern) {
		return pattern == channel
	}

	// casamento guloso com backtracking de um nível, suficiente para '*'
	var starIdx, matchIdx = -1, 0
	p, c := 0, 0
	for c < len(channel) {
		switch {
		case p < len(pattern) && pattern[p] == '*':
			starIdx, matchIdx = p, c
			p++
		case p < len(pattern) && pattern[p] == channel[c]:
			p++
			c++
		case starIdx >= 0:
			matchIdx++
			p, c = starIdx+1, matchIdx
		default:
			return false
		}
	}
	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}
