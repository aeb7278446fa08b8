package ratelimit

import (
	"net/http"
	"strings"
	"time"

	"coordination-gateway/middleware/ratelimit/application"
	"coordination-gateway/middleware/ratelimit/domain"
)

const bearerPrefix = "Bearer "

type Options struct {
	Checker domain.Checker
	Stats   domain.StatsStore

	// APIPrefix delimita o que é tráfego de API. Caminhos fora dele passam
	// direto, sem checagem. Padrão: "/api".
	APIPrefix string

	// Limit força o valor reportado em X-RateLimit-Limit. Se 0, o middleware
	// pergunta ao próprio checker (ver limitInfo); se nem o checker souber,
	// os headers X-RateLimit-* são omitidos em vez de reportar limite 0.
	Limit int

	// FailOpen decide a política quando o store está fora: true encaminha a
	// requisição mesmo sem decisão; false (padrão) responde 500. O limiter em
	// si nunca escolhe isso sozinho.
	FailOpen bool
}

// limitInfo é implementado pelos checkers que conhecem o próprio limite
// (SlidingWindow, MemoryChecker). Usado só para preencher o header.
type limitInfo interface {
	Limit() int
}

// Identity extrai a identidade de uma requisição: o header Authorization com o
// esquema Bearer removido. Retorna "" quando não há credencial.
func Identity(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, bearerPrefix))
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.APIPrefix == "" {
		opts.APIPrefix = "/api"
	}
	if opts.Limit == 0 {
		if li, ok := opts.Checker.(limitInfo); ok {
			opts.Limit = li.Limit()
		}
	}

	svc := application.Service{Checker: opts.Checker}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// fora do prefixo de API: segue sem checar
			if !strings.HasPrefix(r.URL.Path, opts.APIPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			// tráfego sem credencial não é limitado por esta camada; essa
			// responsabilidade fica em outro lugar.
			identity := Identity(r)
			if identity == "" {
				next.ServeHTTP(w, r)
				return
			}

			dec, err := svc.Decide(r.Context(), identity)
			if err != nil {
				if opts.FailOpen {
					next.ServeHTTP(w, r)
					return
				}
				http.Error(w, "rate limit check failed", http.StatusInternalServerError)
				return
			}

			if opts.Stats != nil {
				_ = opts.Stats.Record(r.Context(), domain.StatsEvent{
					Identity:  domain.Key(identity),
					Allowed:   dec.Allowed,
					Remaining: dec.Remaining,
					Path:      r.URL.Path,
					At:        time.Now(),
				})
			}

			if !dec.Allowed {
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			if opts.Limit > 0 {
				w.Header().Set("X-RateLimit-Limit", formatInt(opts.Limit))
				w.Header().Set("X-RateLimit-Remaining", formatInt(dec.Remaining))
				w.Header().Set("X-RateLimit-Reset", formatInt64(dec.ResetAt))
			}

			next.ServeHTTP(w, r)
		})
	}
}
