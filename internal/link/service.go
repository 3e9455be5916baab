package link

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/innexar/afiliados-api/internal/codigo"
	"github.com/innexar/afiliados-api/internal/eventos"
	"github.com/innexar/afiliados-api/internal/metrics"
	"github.com/innexar/afiliados-api/internal/produtos"
	"github.com/innexar/afiliados-api/internal/utils/db"
)

var slugValido = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{2,79}$`)

type Servico struct {
	Repo     *Repository
	Produtos *produtos.Repository
	Gerador  *codigo.Gerador
	Eventos  eventos.Publicador

	gerarCodigo func() string
}

func NewServico(repo *Repository, prods *produtos.Repository, gerador *codigo.Gerador, pub eventos.Publicador) *Servico {
	return &Servico{Repo: repo, Produtos: prods, Gerador: gerador, Eventos: pub, gerarCodigo: gerador.Gerar}
}

// CriarLink cria o link do afiliado para o produto. Tudo roda numa transação;
// cada tentativa de inserção usa um savepoint para que uma colisão de código
// não invalide a transação no Postgres.
func (s *Servico) CriarLink(ctx context.Context, afiliadoID, produtoID uuid.UUID, customSlug *string) (*Link, error) {
	slug, err := normalizarSlug(customSlug)
	if err != nil {
		return nil, err
	}

	var criado *Link
	err = s.Repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.Produtos.WithDB(tx).BuscarPorID(ctx, produtoID)
		if err != nil {
			return err
		}
		if !p.Ativo {
			return produtos.ErrProdutoInativo
		}

		repo := s.Repo.WithDB(tx)
		existe, err := repo.ExisteAtivo(ctx, afiliadoID, produtoID)
		if err != nil {
			return err
		}
		if existe {
			return ErrLinkDuplicado
		}
		if slug != nil {
			if usado, err := repo.SlugExiste(ctx, *slug); err != nil {
				return err
			} else if usado {
				return ErrSlugEmUso
			}
		}

		l := &Link{AfiliadoID: afiliadoID, ProdutoID: produtoID, CustomSlug: slug}
		_, err = codigo.Emitir(ctx, "link", s.gerarCodigo, func(code string) error {
			l.ID = uuid.Nil
			l.Code = code
			alvo, err := urlDestino(p.URLDestino(), code)
			if err != nil {
				return err
			}
			l.TargetURL = alvo
			err = tx.Transaction(func(sp *gorm.DB) error {
				return sp.Omit("Produto").Create(l).Error
			})
			if !db.ViolacaoUnica(err) {
				return err
			}
			return classificarDuplicidade(ctx, repo, l)
		})
		if err != nil {
			return err
		}
		l.Produto = p
		criado = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.LinksCriados.Inc()
	slog.Info("link criado", "afiliado", afiliadoID, "produto", produtoID, "code", criado.Code)
	eventos.Enviar(ctx, s.Eventos, eventos.LinkCriado, afiliadoID.String(), map[string]any{
		"linkId":      criado.ID,
		"productId":   produtoID,
		"affiliateId": afiliadoID,
		"code":        criado.Code,
	})
	return criado, nil
}

// classificarDuplicidade descobre qual índice único a inserção violou.
func classificarDuplicidade(ctx context.Context, repo *Repository, l *Link) error {
	if existe, err := repo.ExisteAtivo(ctx, l.AfiliadoID, l.ProdutoID); err != nil {
		return err
	} else if existe {
		return ErrLinkDuplicado
	}
	if l.CustomSlug != nil {
		if usado, err := repo.SlugExiste(ctx, *l.CustomSlug); err != nil {
			return err
		} else if usado {
			return ErrSlugEmUso
		}
	}
	return codigo.ErrColisao
}

func normalizarSlug(s *string) (*string, error) {
	if s == nil {
		return nil, nil
	}
	slug := strings.ToLower(strings.TrimSpace(*s))
	if slug == "" {
		return nil, nil
	}
	if !slugValido.MatchString(slug) {
		return nil, ErrSlugInvalido
	}
	return &slug, nil
}

// urlDestino acrescenta ref=<code> à URL do produto, preservando a query.
func urlDestino(base, code string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("url do produto inválida: %w", err)
	}
	q := u.Query()
	q.Set("ref", code)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *Servico) RemoverLink(ctx context.Context, afiliadoID, linkID uuid.UUID) error {
	if err := s.Repo.Remover(ctx, afiliadoID, linkID); err != nil {
		return err
	}
	slog.Info("link removido", "afiliado", afiliadoID, "link", linkID)
	return nil
}

func (s *Servico) ListarLinks(ctx context.Context, afiliadoID uuid.UUID) ([]Link, error) {
	return s.Repo.ListarPorAfiliado(ctx, afiliadoID)
}

func (s *Servico) BuscarPorCodigo(ctx context.Context, code string) (*Link, error) {
	return s.Repo.BuscarPorCodigo(ctx, strings.TrimSpace(code))
}

// Acesso descreve a origem de uma visita.
type Acesso struct {
	IP        string
	UserAgent string
	Referer   string
}

// RegistrarVisita grava a visita e soma o clique na mesma transação.
func (s *Servico) RegistrarVisita(ctx context.Context, code string, a Acesso) (*Link, error) {
	var l *Link
	err := s.Repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithDB(tx)
		var err error
		l, err = repo.BuscarPorCodigo(ctx, strings.TrimSpace(code))
		if err != nil {
			return err
		}
		v := &Visita{
			AfiliadoID: l.AfiliadoID,
			LinkID:     l.ID,
			IPHash:     hashIP(a.IP),
			UserAgent:  truncar(a.UserAgent, 500),
			Referer:    truncar(a.Referer, 500),
		}
		if err := repo.CriarVisita(ctx, v); err != nil {
			return err
		}
		if err := repo.incrementar(ctx, l.ID, "total_clicks"); err != nil {
			return err
		}
		l.TotalClicks++
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.Visitas.Inc()
	return l, nil
}

func hashIP(ip string) string {
	if ip == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}

func truncar(s string, n int) string {
	if len(s) <= n {
		return s
	}
	corte := 0
	for i := range s {
		if i > n {
			break
		}
		corte = i
	}
	return s[:corte]
}
