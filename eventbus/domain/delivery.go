package domain

import (
	"context"
	"errors"
)

// Erros comuns do broker.
var (
	// ErrClosed indica que a assinatura (ou o broker) foi encerrada. Uma
	// assinatura encerrada não é reiniciável: reconectar exige um Subscribe
	// novo.
	ErrClosed = errors.New("eventbus: subscription closed")
)

// Discriminadores de entrega, no vocabulário do protocolo pub/sub do store.
//
// Assinaturas exatas recebem eventos como "message"; assinaturas por padrão
// recebem "pmessage". O resto são frames de controle que o loop de consumo
// ignora em silêncio.
const (
	KindMessage      = "message"
	KindPMessage     = "pmessage"
	KindSubscribe    = "subscribe"
	KindPSubscribe   = "psubscribe"
	KindUnsubscribe  = "unsubscribe"
	KindPUnsubscribe = "punsubscribe"
	KindPong         = "pong"
)

// Delivery é o registro bruto entregue pelo broker: um discriminador de tipo e
// o payload em texto. Pattern só vem preenchido em entregas "pmessage".
type Delivery struct {
	Type    string
	Channel string
	Pattern string
	Data    string
}

// Deliveries é a sequência (infinita) de entregas de uma assinatura.
type Deliveries interface {
	// Next bloqueia até a próxima entrega, o cancelamento do ctx ou o fim da
	// assinatura (ErrClosed).
	Next(ctx context.Context) (Delivery, error)

	// Close encerra a assinatura. Idempotente.
	Close() error
}

// Broker é o primitivo pub/sub compartilhado. Implementações são seguras para
// uso concorrente; o cliente subjacente é de vida longa e injetado, nunca um
// global escondido.
type Broker interface {
	Publish(ctx context.Context, channelKey, message string) error
	Subscribe(ctx context.Context, channelKey string) (Deliveries, error)
}
