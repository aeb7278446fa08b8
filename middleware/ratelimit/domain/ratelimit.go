package domain

// Camada de domínio da admissão.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"context"
	"time"
)

// Window é a janela fixa sobre a qual as requisições são contadas.
const Window = 60 * time.Second

// Key é a identidade contra a qual uma requisição é limitada
// (ex: API key, token de portador).
type Key string

// Decision é o resultado efêmero de uma checagem de admissão.
//
// ResetAt é sempre "agora + janela", independente de quando a entrada mais
// antiga da janela realmente expira. É uma aproximação deliberada: um cliente
// que voltar exatamente em ResetAt ainda pode encontrar entradas antigas na
// janela.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   int64 // unix segundos
}

// Checker decide, por identidade e por chamada, se uma nova requisição é
// admitida na janela corrente.
//
// Estar "em cima do limite" ainda é admitido: a N-ésima requisição de N
// permitidas passa; a (N+1)-ésima não.
//
// Falhas de conectividade com o store são fatais para a checagem em curso e
// propagam intocadas — a decisão de fail-open/fail-closed é do chamador.
type Checker interface {
	Check(ctx context.Context, identity string) (Decision, error)
}
