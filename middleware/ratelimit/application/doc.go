// Package application contém os casos de uso (regras de aplicação) para
// admissão de requisições e limite de concorrência.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.Decide(ctx, identity) retorna uma Decision (allow/deny +
// remaining + reset) ou o erro de infraestrutura intocado.
package application
