// Package infra contém implementações concretas (infraestrutura) para os
// contratos definidos no pacote domain.
//
// Exemplos:
//   - SlidingWindow: janela deslizante por identidade em Redis (sorted set)
//   - MemoryChecker: token bucket em memória usando golang.org/x/time/rate
//   - ChanPool: semáforo simples para limite de concorrência
//   - RedisStatsStore / MemoryStatsStore: contadores de decisões
package infra
