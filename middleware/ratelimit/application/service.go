package application

import (
	"context"
	"time"

	"coordination-gateway/middleware/ratelimit/domain"
)

// Service concentra a regra de aplicação da admissão.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas repassa a decisão do
// Checker. Erros do store NÃO viram decisão: propagam para o chamador decidir
// a política (fail-open/fail-closed).
type Service struct {
	Checker domain.Checker
}

func (s Service) Decide(ctx context.Context, identity string) (domain.Decision, error) {
	if s.Checker == nil {
		// sem checker configurado, tudo passa (mesma postura do gateway com
		// rate limit desabilitado).
		return domain.Decision{
			Allowed: true,
			ResetAt: time.Now().Add(domain.Window).Unix(),
		}, nil
	}
	return s.Checker.Check(ctx, identity)
}
