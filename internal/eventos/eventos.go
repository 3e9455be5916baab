// Package eventos publica os eventos de domínio (comissões, saques, links)
// para integrações externas.
package eventos

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

const (
	ComissaoRegistrada     = "comissao.registrada"
	ComissaoStatusAlterado = "comissao.status_alterado"
	SaqueSolicitado        = "saque.solicitado"
	SaqueStatusAlterado    = "saque.status_alterado"
	LinkCriado             = "link.criado"
)

// Evento é a mensagem publicada. Chave define a partição (normalmente o
// afiliado), mantendo a ordem dos eventos de um mesmo afiliado.
type Evento struct {
	Tipo  string    `json:"type"`
	Chave string    `json:"key"`
	Dados any       `json:"data"`
	Em    time.Time `json:"occurredAt"`
}

type Publicador interface {
	Publicar(ctx context.Context, ev Evento) error
	Close() error
}

// tempo máximo de uma publicação feita a partir de uma requisição
const timeoutEnvio = 3 * time.Second

// Enviar publica depois do commit. Falhas só são registradas em log: o
// registro no banco já aconteceu e é a fonte da verdade.
func Enviar(ctx context.Context, p Publicador, tipo, chave string, dados any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeoutEnvio)
	defer cancel()

	ev := Evento{Tipo: tipo, Chave: chave, Dados: dados, Em: time.Now().UTC()}
	if err := p.Publicar(ctx, ev); err != nil {
		slog.Warn("falha ao publicar evento", "tipo", tipo, "chave", chave, "erro", err)
	}
}

func codificar(ev Evento) ([]byte, error) {
	return json.Marshal(ev)
}

// Nop descarta os eventos. Usado quando não há brokers configurados.
type Nop struct{}

func (Nop) Publicar(context.Context, Evento) error { return nil }
func (Nop) Close() error                          { return nil }

// Memoria guarda os eventos publicados; útil em testes.
type Memoria struct {
	mu      sync.Mutex
	eventos []Evento
}

func (m *Memoria) Publicar(_ context.Context, ev Evento) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventos = append(m.eventos, ev)
	return nil
}

func (m *Memoria) Close() error { return nil }

func (m *Memoria) Eventos() []Evento {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Evento(nil), m.eventos...)
}

// Tipos devolve só os tipos, na ordem de publicação.
func (m *Memoria) Tipos() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	tipos := make([]string, len(m.eventos))
	for i, ev := range m.eventos {
		tipos[i] = ev.Tipo
	}
	return tipos
}
