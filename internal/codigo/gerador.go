// Package codigo gera os códigos de rastreamento de links e os códigos de
// indicação dos afiliados.
package codigo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	nanoid "github.com/jaevor/go-nanoid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/innexar/afiliados-api/internal/apperr"
	"github.com/innexar/afiliados-api/internal/metrics"
)

const (
	Alfabeto       = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	TamanhoLink    = 8
	TamanhoPrefixo = 6
	TamanhoSufixo  = 4
	MaxTentativas  = 10

	prefixoPadrao = "AFIL"
)

var (
	// ErrColisao sinaliza que o código gerado já existe. Quem persiste deve
	// devolvê-lo (ou envolvê-lo) quando a inserção violar o índice único.
	ErrColisao = errors.New("codigo: colisão com código existente")

	ErrTentativasEsgotadas = apperr.NovoEsgotado("EXHAUSTED_RETRIES",
		"Não foi possível gerar um código único. Tente novamente.")
)

// Gerador produz códigos aleatórios a partir do Alfabeto.
type Gerador struct {
	link func() string
}

func NovoGerador() (*Gerador, error) {
	link, err := nanoid.CustomASCII(Alfabeto, TamanhoLink)
	if err != nil {
		return nil, fmt.Errorf("gerador de link: %w", err)
	}
	return &Gerador{link: link}, nil
}

// Gerar devolve um código de link com TamanhoLink caracteres.
func (g *Gerador) Gerar() string {
	return g.link()
}

// GerarReferral devolve o prefixo derivado do nome seguido de um sufixo aleatório.
// O sufixo sai do gerador de link: o go-nanoid trava com tamanhos abaixo de 5.
func (g *Gerador) GerarReferral(nome string) string {
	return Prefixo(nome) + g.link()[:TamanhoSufixo]
}

var semAcentos = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Prefixo usa o primeiro nome: sem acentos, maiúsculo, só letras A-Z, até
// TamanhoPrefixo caracteres.
func Prefixo(nome string) string {
	campos := strings.Fields(nome)
	if len(campos) == 0 {
		return prefixoPadrao
	}
	limpo, _, err := transform.String(semAcentos, campos[0])
	if err != nil {
		limpo = campos[0]
	}

	var b strings.Builder
	for _, r := range strings.ToUpper(limpo) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
			if b.Len() == TamanhoPrefixo {
				break
			}
		}
	}
	if b.Len() == 0 {
		return prefixoPadrao
	}
	return b.String()
}

// Emitir gera códigos até que persistir aceite um deles. O índice único do banco
// é quem decide: persistir deve devolver ErrColisao quando a inserção violar a
// unicidade do código. Qualquer outro erro interrompe as tentativas.
func Emitir(ctx context.Context, tipo string, gerar func() string, persistir func(code string) error) (string, error) {
	for tentativa := 1; tentativa <= MaxTentativas; tentativa++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		code := gerar()
		err := persistir(code)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, ErrColisao) {
			return "", err
		}
		metrics.ColisoesCodigo.WithLabelValues(tipo).Inc()
		slog.Debug("colisão de código", "tipo", tipo, "tentativa", tentativa)
	}
	slog.Warn("tentativas de geração de código esgotadas", "tipo", tipo)
	return "", ErrTentativasEsgotadas
}
