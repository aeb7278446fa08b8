package domain

import (
	"context"
	"time"
)

// StatsEvent representa uma decisão de admissão já tomada.
//
// Observação: cuidado com cardinalidade (salvar Identity/Path sem controle
// pode explodir o número de chaves em uma base como Redis).
type StatsEvent struct {
	Identity Key
	Allowed  bool

	// Remaining no momento da decisão (0 quando negado).
	Remaining int

	Path string

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas de admissão.
//
// Implementações podem armazenar em Redis, memória, etc.
// O middleware trata erro como best-effort (não derruba a request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
