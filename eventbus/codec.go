package eventbus

import (
	"encoding/json"
	"fmt"
	"log"

	"coordination-gateway/eventbus/domain"
)

// DefaultMaxMessageSize é o teto de payload serializado quando nenhum for
// configurado (8 MiB).
const DefaultMaxMessageSize = 8 << 20

// oversizeEventType marca o envelope substituto de payloads acima do teto.
const oversizeEventType = "error_comms_update"

// Envelope embrulha o payload tipado antes da transmissão.
type Envelope[T any] struct {
	Payload T `json:"payload"`
}

// oversizeEvent substitui o payload real quando o serializado estoura o teto.
// Continua sendo uma mensagem bem formada: o consumidor recebe um sinal
// explícito de "grande demais", nunca dado malformado.
type oversizeEvent struct {
	EventType         string `json:"event_type"`
	Message           string `json:"message"`
	OriginalSizeBytes int    `json:"original_size_bytes"`
}

// Codec serializa e desserializa eventos de um bus.
type Codec[T any] struct {
	Bus domain.BusName

	// MaxMessageSize em bytes; <=0 usa DefaultMaxMessageSize.
	MaxMessageSize int
}

func (c Codec[T]) maxSize() int {
	if c.MaxMessageSize > 0 {
		return c.MaxMessageSize
	}
	return DefaultMaxMessageSize
}

// Serialize embrulha o evento e produz (mensagem, chave de canal).
//
// Payload acima do teto não é erro: vira o envelope substituto, carregando o
// tamanho original para observabilidade. Erro só acontece se o próprio
// payload não for serializável (bug do chamador).
func (c Codec[T]) Serialize(event T, channelSuffix string) (string, string, error) {
	channelKey := domain.ChannelKey(c.Bus, channelSuffix)

	b, err := json.Marshal(Envelope[T]{Payload: event})
	if err != nil {
		return "", "", fmt.Errorf("eventbus: marshal event for %s: %w", channelKey, err)
	}

	if len(b) > c.maxSize() {
		fallback, err := json.Marshal(Envelope[oversizeEvent]{Payload: oversizeEvent{
			EventType:         oversizeEventType,
			Message:           fmt.Sprintf("Payload too large: %d bytes (limit %d)", len(b), c.maxSize()),
			OriginalSizeBytes: len(b),
		}})
		if err != nil {
			// struct fixo de campos primitivos; não falha na prática
			return "", "", fmt.Errorf("eventbus: marshal oversize fallback for %s: %w", channelKey, err)
		}
		log.Printf("eventbus: payload on %s over size limit (%d > %d), publishing fallback",
			channelKey, len(b), c.maxSize())
		return string(fallback), channelKey, nil
	}

	return string(b), channelKey, nil
}

// rawEnvelope segura o payload ainda serializado para dar para distinguir
// "campo ausente" de "payload de valores zero".
type rawEnvelope struct {
	Payload json.RawMessage `json:"payload"`
}

// Deserialize traduz uma entrega bruta de volta para o evento tipado.
//
// Retorna (zero, false) — nunca erro — quando:
//   - o discriminador não casa com o tipo da assinatura (chave com curinga
//     exige "pmessage"; chave exata exige "message"); isso cobre também os
//     frames de controle subscribe/psubscribe, ignorados em silêncio;
//   - o data não é JSON válido ou não tem o formato do envelope (a chave
//     "payload" é obrigatória: um `{}` válido não vira evento de valores
//     zero, vira ausência de evento).
//
// Uma mensagem ruim é logada e pulada; o loop de consumo segue vivo.
func (c Codec[T]) Deserialize(d domain.Delivery, channelKey string) (T, bool) {
	var zero T

	want := domain.KindMessage
	if domain.IsPattern(channelKey) {
		want = domain.KindPMessage
	}
	if d.Type != want {
		return zero, false
	}

	var env rawEnvelope
	if err := json.Unmarshal([]byte(d.Data), &env); err != nil {
		log.Printf("eventbus: dropping malformed delivery on %s: %v", channelKey, err)
		return zero, false
	}
	if len(env.Payload) == 0 || string(env.Payload) == "null" {
		log.Printf("eventbus: dropping delivery without payload on %s", channelKey)
		return zero, false
	}

	var payload T
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		log.Printf("eventbus: dropping delivery with mismatched payload on %s: %v", channelKey, err)
		return zero, false
	}
	return payload, true
}
