// Package eventbus fornece um bus de eventos tipado sobre um broker pub/sub
// compartilhado (Redis em produção, memória em testes).
//
// Visão geral (camadas):
//
//   - domain: contratos do broker, registro de entrega e regras de canal
//   - infra: brokers concretos (Redis pub/sub, memória)
//   - eventbus (este pacote): envelope {"payload": ...}, teto de tamanho com
//     degradação controlada e o Bus genérico Publish/Subscribe
//
// O loop de consumo é de vida longa: entrega malformada, discriminador errado
// e frame de controle viram ausência de evento (logados e pulados), nunca
// erro — uma mensagem envenenada não derruba um consumidor saudável.
package eventbus
