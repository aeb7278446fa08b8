package eventbus

import (
	"context"

	"coordination-gateway/eventbus/domain"
)

type settings struct {
	maxMessageSize int
	buffer         int
}

type Option func(*settings)

// WithMaxMessageSize define o teto (bytes) do payload serializado.
func WithMaxMessageSize(n int) Option {
	return func(s *settings) { s.maxMessageSize = n }
}

// WithBuffer define o tamanho do buffer do canal de assinatura.
func WithBuffer(n int) Option {
	return func(s *settings) { s.buffer = n }
}

// Bus é o bus de eventos tipado: publica eventos T em sufixos de canal e
// traduz entregas do broker de volta para T.
//
// Seguro para uso por múltiplas goroutines; o broker injetado cuida da
// sincronização de transporte.
type Bus[T any] struct {
	broker domain.Broker
	codec  Codec[T]
	buffer int
}

// New cria um bus com o broker injetado e o nome que prefixa os canais.
func New[T any](broker domain.Broker, name domain.BusName, opts ...Option) *Bus[T] {
	s := settings{buffer: 256}
	for _, opt := range opts {
		opt(&s)
	}
	return &Bus[T]{
		broker: broker,
		codec:  Codec[T]{Bus: name, MaxMessageSize: s.maxMessageSize},
		buffer: s.buffer,
	}
}

// Name retorna o nome do bus.
func (b *Bus[T]) Name() domain.BusName { return b.codec.Bus }

// Publish serializa o evento e publica em "{bus}/{suffix}".
//
// Payload acima do teto ainda publica (o envelope substituto); falha de
// conectividade com o broker propaga intocada, sem retry interno.
func (b *Bus[T]) Publish(ctx context.Context, channelSuffix string, event T) error {
	msg, channelKey, err := b.codec.Serialize(event, channelSuffix)
	if err != nil {
		return err
	}
	return b.broker.Publish(ctx, channelKey, msg)
}

// Subscribe assina "{bus}/{suffix}" (por padrão se o sufixo tiver curinga) e
// devolve o canal de eventos tipados.
//
// O canal fecha quando o ctx cancela ou a assinatura termina; entregas que não
// viram evento (frames de controle, mensagens malformadas) são puladas.
// Uma assinatura encerrada não renasce: chame Subscribe de novo.
func (b *Bus[T]) Subscribe(ctx context.Context, channelSuffix string) (<-chan T, error) {
	channelKey := domain.ChannelKey(b.codec.Bus, channelSuffix)

	deliveries, err := b.broker.Subscribe(ctx, channelKey)
	if err != nil {
		return nil, err
	}

	out := make(chan T, b.buffer)
	go func() {
		defer close(out)
		defer func() { _ = deliveries.Close() }()

		for {
			d, err := deliveries.Next(ctx)
			if err != nil {
				// ErrClosed, cancelamento ou queda do broker: o canal fecha e
				// quem consome decide se reassina.
				return
			}

			event, ok := b.codec.Deserialize(d, channelKey)
			if !ok {
				continue
			}

			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
