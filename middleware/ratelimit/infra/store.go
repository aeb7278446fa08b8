package infra

import (
	"context"
	"sync"
	"time"

	"coordination-gateway/middleware/ratelimit/domain"

	"golang.org/x/time/rate"
)

// MemoryChecker é um domain.Checker local baseado em token-bucket
// (x/time/rate), com cache por identidade e limpeza periódica.
//
// Serve para rodar uma instância única sem Redis. Não coordena nada entre
// processos: cada instância conta sozinha.
type MemoryChecker struct {
	mu           sync.Mutex
	entries      map[string]*checkerEntry
	maxRequests  int
	window       time.Duration
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type checkerEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type MemoryCheckerOption func(*MemoryChecker)

func WithIdleTTL(d time.Duration) MemoryCheckerOption {
	return func(c *MemoryChecker) { c.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) MemoryCheckerOption {
	return func(c *MemoryChecker) { c.cleanupEvery = d }
}

// NewMemoryChecker cria o checker local. O bucket de cada identidade reenche a
// requestsPerMinute/60 por segundo, com burst igual ao limite da janela.
func NewMemoryChecker(requestsPerMinute int, opts ...MemoryCheckerOption) *MemoryChecker {
	c := &MemoryChecker{
		entries:      make(map[string]*checkerEntry),
		maxRequests:  requestsPerMinute,
		window:       domain.Window,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Limit expõe o máximo configurado (usado pelo middleware nos headers).
func (c *MemoryChecker) Limit() int { return c.maxRequests }

func (c *MemoryChecker) CleanupEvery() time.Duration { return c.cleanupEvery }

// Check implementa domain.Checker. Nunca retorna erro: não há store externo
// para falhar.
func (c *MemoryChecker) Check(_ context.Context, identity string) (domain.Decision, error) {
	now := time.Now()
	lim := c.get(identity, now)

	allowed := lim.Allow()

	// Tokens() é uma foto instantânea; arredonda para baixo e nunca reporta
	// negativo para manter o contrato de Remaining.
	remaining := int(lim.Tokens())
	if remaining < 0 {
		remaining = 0
	}

	return domain.Decision{
		Allowed:   allowed,
		Remaining: remaining,
		ResetAt:   now.Add(c.window).Unix(),
	}, nil
}

func (c *MemoryChecker) get(identity string, now time.Time) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.entries[identity]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(rate.Limit(float64(c.maxRequests)/c.window.Seconds()), c.maxRequests)
	c.entries[identity] = &checkerEntry{lim: lim, lastSeen: now}
	return lim
}

// Cleanup remove identidades sem atividade há mais de idleTTL.
func (c *MemoryChecker) Cleanup() {
	cutoff := time.Now().Add(-c.idleTTL)

	c.mu.Lock()
	defer c.mu.Unlock()

	for k, ent := range c.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(c.entries, k)
		}
	}
}

// StartJanitor inicia uma goroutine que limpa identidades inativas
// periodicamente. Pare cancelando o contexto.
func (c *MemoryChecker) StartJanitor(ctx DoneContext) {
	if c.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(c.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				c.Cleanup()
			}
		}
	}()
}

// DoneContext é o mínimo que o janitor precisa de um context.Context.
// (Aceita qualquer coisa com Done, sem acoplar o ciclo de vida ao resto.)
type DoneContext interface {
	Done() <-chan struct{}
}
