package infra

import (
	"context"

	"coordination-gateway/middleware/ratelimit/domain"
)

// chanPool é um domain.SlotPool mínimo: um channel com buffer faz o papel de
// semáforo contado, sem mutex e sem contagem própria.
type chanPool struct {
	sem chan struct{}
}

// NewChanPool cria um pool com capacidade `max` vagas.
func NewChanPool(max int) domain.SlotPool {
	return &chanPool{sem: make(chan struct{}, max)}
}

// Acquire bloqueia até sobrar vaga ou o ctx encerrar. Um ctx já cancelado
// nunca ganha vaga por sorteio do select: a desistência é checada primeiro.
func (p *chanPool) Acquire(ctx context.Context) (func(), bool) {
	select {
	case <-ctx.Done():
		return nil, false
	default:
	}

	select {
	case p.sem <- struct{}{}:
		return p.release, true
	case <-ctx.Done():
		return nil, false
	}
}

func (p *chanPool) release() { <-p.sem }
