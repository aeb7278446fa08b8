package domain

import "strings"

// PatternMarker é o curinga que transforma uma chave de canal em assinatura
// por padrão.
const PatternMarker = "*"

// BusName identifica um bus e prefixa todas as suas chaves de canal.
//
// Newtype aberto/fechado: os nomes conhecidos da plataforma ficam na tabela
// abaixo, mas nomes fora dela continuam válidos via BusNameOf — nada de criar
// membro fantasma dinamicamente.
type BusName string

const (
	BusExecution     BusName = "execution"
	BusNotifications BusName = "notifications"
)

var knownBusNames = map[string]BusName{
	string(BusExecution):     BusExecution,
	string(BusNotifications): BusNotifications,
}

// BusNameOf resolve um nome para o membro conhecido ou constrói um aberto.
func BusNameOf(s string) BusName {
	if b, ok := knownBusNames[s]; ok {
		return b
	}
	return BusName(s)
}

// Known informa se o nome está na tabela de nomes da plataforma.
func (b BusName) Known() bool {
	_, ok := knownBusNames[string(b)]
	return ok
}

// ChannelKey monta a chave lógica de um tópico: "{bus}/{suffix}".
func ChannelKey(bus BusName, suffix string) string {
	return string(bus) + "/" + suffix
}

// IsPattern informa se a chave denota assinatura por padrão (contém curinga).
func IsPattern(channelKey string) bool {
	return strings.Contains(channelKey, PatternMarker)
}
