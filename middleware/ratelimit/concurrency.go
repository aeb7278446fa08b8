package ratelimit

import (
	"net/http"
	"time"

	"coordination-gateway/middleware/ratelimit/application"
	"coordination-gateway/middleware/ratelimit/infra"
)

type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration

	// RetryAfter recomendado na resposta de saturação. Se 0, não envia header.
	RetryAfter time.Duration
}

// ConcurrencyMiddleware limita quantas requisições seguem adiante ao mesmo
// tempo. Proteção do upstream, ortogonal ao rate limit por identidade.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}

	svc := application.ConcurrencyService{
		Pool:           infra.NewChanPool(opts.Max),
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := svc.Acquire(r.Context())
			if !ok {
				if opts.RetryAfter > 0 {
					w.Header().Set("Retry-After", formatInt(int(opts.RetryAfter.Seconds())))
				}
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
