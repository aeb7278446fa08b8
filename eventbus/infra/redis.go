package infra

import (
	"context"
	"fmt"

	"coordination-gateway/eventbus/domain"

	"github.com/redis/go-redis/v9"
)

// RedisBroker implementa domain.Broker sobre o pub/sub do Redis.
//
// O cliente é injetado e compartilhado; o go-redis cuida da sincronização
// interna, então um único broker serve todos os publicadores e assinantes do
// processo.
type RedisBroker struct {
	rdb *redis.Client
}

func NewRedisBroker(rdb *redis.Client) *RedisBroker {
	return &RedisBroker{rdb: rdb}
}

func (b *RedisBroker) Publish(ctx context.Context, channelKey, message string) error {
	return b.rdb.Publish(ctx, channelKey, message).Err()
}

// Subscribe escolhe SUBSCRIBE ou PSUBSCRIBE conforme a chave tiver curinga.
func (b *RedisBroker) Subscribe(ctx context.Context, channelKey string) (domain.Deliveries, error) {
	var ps *redis.PubSub
	if domain.IsPattern(channelKey) {
		ps = b.rdb.PSubscribe(ctx, channelKey)
	} else {
		ps = b.rdb.Subscribe(ctx, channelKey)
	}

	// confirma a assinatura antes de devolver; falha aqui é falha de
	// conectividade e propaga.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	return &redisDeliveries{ps: ps, pattern: domain.IsPattern(channelKey), channelKey: channelKey}, nil
}

type redisDeliveries struct {
	ps         *redis.PubSub
	pattern    bool
	channelKey string
}

// Next mapeia os frames do go-redis para o registro bruto de entrega.
// Frames de controle (subscribe, pong) passam adiante; é o codec que decide
// ignorá-los.
func (d *redisDeliveries) Next(ctx context.Context) (domain.Delivery, error) {
	frame, err := d.ps.Receive(ctx)
	if err != nil {
		return domain.Delivery{}, err
	}

	switch m := frame.(type) {
	case *redis.Message:
		typ := domain.KindMessage
		if m.Pattern != "" {
			typ = domain.KindPMessage
		}
		return domain.Delivery{Type: typ, Channel: m.Channel, Pattern: m.Pattern, Data: m.Payload}, nil
	case *redis.Subscription:
		// subscribe/unsubscribe/psubscribe/punsubscribe
		return domain.Delivery{Type: m.Kind, Channel: m.Channel}, nil
	case *redis.Pong:
		return domain.Delivery{Type: domain.KindPong}, nil
	default:
		return domain.Delivery{}, fmt.Errorf("eventbus: unexpected pubsub frame %T on %s", frame, d.channelKey)
	}
}

func (d *redisDeliveries) Close() error {
	return d.ps.Close()
}
