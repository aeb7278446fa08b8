// Package infra contém brokers concretos para os contratos do pacote domain.
//
// Exemplos:
//   - RedisBroker: pub/sub do Redis (SUBSCRIBE/PSUBSCRIBE), com os frames
//     brutos do protocolo expostos como Delivery
//   - MemoryBroker: broker em processo para testes e uso single-process
package infra
