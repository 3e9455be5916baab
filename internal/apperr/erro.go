// Package apperr define a taxonomia de erros da API e o mapeamento para HTTP.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Tipo classifica um erro de domínio.
type Tipo int

const (
	Interno Tipo = iota
	Validacao
	NaoEncontrado
	Conflito
	RegraNegocio
	Esgotado
	NaoAutorizado
	Proibido
)

func (t Tipo) String() string {
	switch t {
	case Validacao:
		return "validacao"
	case NaoEncontrado:
		return "nao_encontrado"
	case Conflito:
		return "conflito"
	case RegraNegocio:
		return "regra_negocio"
	case Esgotado:
		return "esgotado"
	case NaoAutorizado:
		return "nao_autorizado"
	case Proibido:
		return "proibido"
	default:
		return "interno"
	}
}

// Erro é o erro tipado devolvido pelos serviços.
type Erro struct {
	Tipo     Tipo
	Codigo   string
	Mensagem string
	Campos   map[string]string
	Err      error
}

func (e *Erro) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Codigo, e.Mensagem, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Codigo, e.Mensagem)
}

func (e *Erro) Unwrap() error { return e.Err }

// Is compara pelo código, então errors.Is(err, ErrX) funciona para cópias
// criadas com Com ou ComCampos.
func (e *Erro) Is(target error) bool {
	t, ok := target.(*Erro)
	if !ok {
		return false
	}
	return t.Codigo == e.Codigo
}

// Com devolve uma cópia do erro carregando a causa.
func (e *Erro) Com(causa error) *Erro {
	c := *e
	c.Err = causa
	return &c
}

// ComCampos devolve uma cópia com detalhes por campo.
func (e *Erro) ComCampos(campos map[string]string) *Erro {
	c := *e
	c.Campos = campos
	return &c
}

// ComMensagem devolve uma cópia com outra mensagem, mantendo o código.
func (e *Erro) ComMensagem(msg string) *Erro {
	c := *e
	c.Mensagem = msg
	return &c
}

func Novo(tipo Tipo, codigo, msg string) *Erro {
	return &Erro{Tipo: tipo, Codigo: codigo, Mensagem: msg}
}

func NovoValidacao(codigo, msg string) *Erro    { return Novo(Validacao, codigo, msg) }
func NovoNaoEncontrado(codigo, msg string) *Erro { return Novo(NaoEncontrado, codigo, msg) }
func NovoConflito(codigo, msg string) *Erro     { return Novo(Conflito, codigo, msg) }
func NovoRegraNegocio(codigo, msg string) *Erro { return Novo(RegraNegocio, codigo, msg) }
func NovoEsgotado(codigo, msg string) *Erro     { return Novo(Esgotado, codigo, msg) }

// Erros genéricos compartilhados pelos pacotes.
var (
	ErrEntradaInvalida = NovoValidacao("INVALID_INPUT", "Dados inválidos")
	ErrJSONInvalido    = NovoValidacao("INVALID_JSON", "JSON mal formado")
	ErrNaoAutenticado  = Novo(NaoAutorizado, "UNAUTHORIZED", "Token ausente ou inválido")
	ErrSemPermissao    = Novo(Proibido, "FORBIDDEN", "Acesso restrito a administradores")
	ErrNaoEncontrado   = NovoNaoEncontrado("NOT_FOUND", "Registro não encontrado")
)

// TipoDe devolve o tipo do erro, ou Interno quando não é um *Erro.
func TipoDe(err error) Tipo {
	var e *Erro
	if errors.As(err, &e) {
		return e.Tipo
	}
	return Interno
}

// E informa se err é do tipo indicado.
func E(err error, tipo Tipo) bool {
	return err != nil && TipoDe(err) == tipo
}

// Status mapeia o tipo para o código HTTP.
func Status(tipo Tipo) int {
	switch tipo {
	case Validacao, RegraNegocio:
		return http.StatusBadRequest
	case NaoEncontrado:
		return http.StatusNotFound
	case Conflito:
		return http.StatusConflict
	case Esgotado:
		return http.StatusServiceUnavailable
	case NaoAutorizado:
		return http.StatusUnauthorized
	case Proibido:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

type corpoErro struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Escrever serializa err como JSON com o status correspondente.
func Escrever(w http.ResponseWriter, err error) {
	var e *Erro
	if !errors.As(err, &e) {
		slog.Error("erro interno", "erro", err)
		e = Novo(Interno, "INTERNAL_ERROR", "Erro interno do servidor")
	} else if e.Tipo == Interno || e.Tipo == Esgotado {
		slog.Error("falha ao processar requisição", "codigo", e.Codigo, "erro", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(Status(e.Tipo))
	_ = json.NewEncoder(w).Encode(corpoErro{Error: e.Codigo, Message: e.Mensagem, Fields: e.Campos})
}
