// Package ratelimit fornece adapters HTTP (net/http) para admissão de
// requisições por identidade e limite de concorrência.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (decisão allow/deny, acquire/timeout) sem net/http
//   - infra: implementações concretas (janela deslizante em Redis, token
//     bucket local), detalhes de infraestrutura
//   - ratelimit (este pacote): middlewares HTTP + extração da identidade +
//     tradução para status/headers
//
// Fluxo no gateway:
//
//  1. Ignora caminhos fora do prefixo de API e tráfego sem credencial
//  2. Extrai a identidade do header Authorization (prefixo Bearer removido)
//  3. Chama a camada application para obter a decisão
//  4. Se bloqueado, responde 429 com "Rate limit exceeded"
//  5. Se permitido, grava os headers X-RateLimit-* e chama o próximo handler
//
// Variáveis de ambiente do binário gateway (cmd/gateway) controlam o
// comportamento, como RATE_LIMIT_RPM, RATE_BACKEND, CONCURRENCY_MAX e
// CONCURRENCY_TIMEOUT.
package ratelimit
