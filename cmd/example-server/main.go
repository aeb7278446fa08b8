package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coordination-gateway/middleware/ratelimit"
	"coordination-gateway/middleware/ratelimit/infra"
)

func main() {
	// Exemplo: injetando o middleware diretamente no seu webserver (sem proxy),
	// com o backend local em memória.
	checker := infra.NewMemoryChecker(60)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	checker.StartJanitor(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/resource", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if who, ok := ratelimit.ValidatorValue(r.Context()); ok {
			_, _ = w.Write([]byte("ok, " + who.(string) + "\n"))
			return
		}
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		// fora do prefixo /api: nunca é limitado
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("healthy\n"))
	})

	// validador de exemplo: requisições de manutenção não passam; quem tem
	// credencial ganha o principal no contexto.
	maintenance := func(r *http.Request) (ratelimit.ValidatorResult, error) {
		if r.Header.Get("X-Maintenance") == "true" {
			return ratelimit.Deny(), nil
		}
		if id := ratelimit.Identity(r); id != "" {
			return ratelimit.AllowValue(id), nil
		}
		return ratelimit.Allow(), nil
	}

	// ordem: admissão por identidade -> cap de concorrência -> validadores
	h := http.Handler(mux)
	h = ratelimit.ValidatorMiddleware(maintenance)(h)
	h = ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{Max: 50})(h)
	h = ratelimit.Middleware(ratelimit.Options{
		Checker: checker,
		Stats:   infra.NewMemoryStatsStore(),
	})(h)

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("example server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
