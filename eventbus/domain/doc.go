// Package domain define contratos e tipos de domínio para o bus de eventos
// tipado: o registro bruto de entrega do broker, os contratos de
// publicação/assinatura e as regras de nomeação de canal.
//
// Este pacote não conhece Redis nem JSON; a intenção é permitir brokers de
// teste em memória e manter o codec desacoplado do transporte.
package domain
