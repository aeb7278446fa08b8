package infra

import (
	"context"
	"strconv"
	"time"

	"coordination-gateway/middleware/ratelimit/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SlidingWindow é um domain.Checker distribuído: conta requisições por
// identidade em um sorted set no Redis, com janela fixa de 60s.
//
// As quatro sub-operações (poda, inserção, contagem, refresh do TTL) vão em um
// único pipeline, então duas checagens concorrentes para a mesma identidade
// nunca observam ambas uma contagem pré-incremento — é isso que fecha a
// corrida clássica de check-then-act sem precisar de um árbitro central.
//
// A chave expira sozinha após uma janela de inatividade; nunca é deletada
// explicitamente.
type SlidingWindow struct {
	rdb *redis.Client

	maxRequests int
	window      time.Duration
}

// NewSlidingWindow cria o checker com o limite de requisições por janela.
// O cliente Redis é injetado: ele é compartilhado e de vida longa, nunca um
// global escondido.
func NewSlidingWindow(rdb *redis.Client, requestsPerMinute int) *SlidingWindow {
	return &SlidingWindow{
		rdb:         rdb,
		maxRequests: requestsPerMinute,
		window:      domain.Window,
	}
}

// Limit expõe o máximo configurado (usado pelo middleware nos headers).
func (l *SlidingWindow) Limit() int { return l.maxRequests }

// Check implementa domain.Checker.
//
// Qualquer falha de conectividade com o Redis propaga intocada; nenhuma
// decisão local de fallback é tomada aqui.
func (l *SlidingWindow) Check(ctx context.Context, identity string) (domain.Decision, error) {
	key := windowKey(identity)
	now := time.Now()

	nowSec := float64(now.UnixNano()) / float64(time.Second)
	cutoff := nowSec - l.window.Seconds()

	pipe := l.rdb.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatFloat(cutoff, 'f', -1, 64))
	pipe.ZAdd(ctx, key, redis.Z{Score: nowSec, Member: windowMember(now)})
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return domain.Decision{}, err
	}

	return decisionAt(int(card.Val()), l.maxRequests, now, l.window), nil
}

// windowKey monta a chave no formato "ratelimit:{identity}:1min".
func windowKey(identity string) string {
	return "ratelimit:" + identity + ":1min"
}

// windowMember gera um membro único por chamada (timestamp em ns + sufixo
// aleatório), para que requisições concorrentes no mesmo instante não colidam
// dentro do sorted set.
func windowMember(now time.Time) string {
	return strconv.FormatInt(now.UnixNano(), 10) + "-" + uuid.NewString()
}

// decisionAt aplica a regra de admissão sobre a contagem pós-inserção.
//
// count já inclui a requisição corrente, então estar exatamente no limite
// ainda é admitido (a N-ésima de N passa). ResetAt é "agora + janela",
// aproximado de propósito.
func decisionAt(count, maxRequests int, now time.Time, window time.Duration) domain.Decision {
	remaining := maxRequests - count
	if remaining < 0 {
		remaining = 0
	}
	return domain.Decision{
		Allowed:   count <= maxRequests,
		Remaining: remaining,
		ResetAt:   now.Add(window).Unix(),
	}
}
