// Package domain define contratos e tipos de domínio para admissão de
// requisições (rate limit por identidade).
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar regras de negócio
// de detalhes de infraestrutura (Redis, token bucket em memória, etc).
package domain
