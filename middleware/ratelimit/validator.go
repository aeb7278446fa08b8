package ratelimit

import (
	"context"
	"net/http"
)

// Validadores de admissão complementares ao rate limit.
//
// Um validador pode devolver só um booleano (passa/não passa) ou um booleano
// acompanhado de um objeto (ex: o principal autenticado) que fica disponível
// no contexto da requisição. As duas formas são a mesma variante etiquetada,
// sempre resolvida por completo antes de o middleware inspecionar o resultado.

// ValidatorResult é a variante {booleano, booleano+objeto}.
type ValidatorResult struct {
	allowed bool
	value   any
}

// Allow admite sem anexar nada.
func Allow() ValidatorResult { return ValidatorResult{allowed: true} }

// AllowValue admite e anexa um objeto ao contexto da requisição.
func AllowValue(v any) ValidatorResult { return ValidatorResult{allowed: true, value: v} }

// Deny nega a admissão.
func Deny() ValidatorResult { return ValidatorResult{} }

func (r ValidatorResult) Allowed() bool { return r.allowed }

// Value retorna o objeto anexado, se houver.
func (r ValidatorResult) Value() (any, bool) { return r.value, r.value != nil }

// Validator inspeciona a requisição e decide. Erro é falha de infraestrutura,
// não negação.
type Validator func(r *http.Request) (ValidatorResult, error)

type validatorValueKey struct{}

// ValidatorValue recupera o objeto anexado por um validador, se algum anexou.
func ValidatorValue(ctx context.Context) (any, bool) {
	v := ctx.Value(validatorValueKey{})
	return v, v != nil
}

// ValidatorMiddleware roda os validadores em ordem antes de encaminhar.
// Negação responde 403; erro responde 500; objetos anexados vão para o
// contexto (o último sobrescreve).
func ValidatorMiddleware(validators ...Validator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(validators) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, validate := range validators {
				res, err := validate(r)
				if err != nil {
					http.Error(w, "validation failed", http.StatusInternalServerError)
					return
				}
				if !res.Allowed() {
					http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
					return
				}
				if v, ok := res.Value(); ok {
					r = r.WithContext(context.WithValue(r.Context(), validatorValueKey{}, v))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
