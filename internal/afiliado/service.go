package afiliado

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/innexar/afiliados-api/internal/auth"
	"github.com/innexar/afiliados-api/internal/codigo"
	"github.com/innexar/afiliados-api/internal/estrutura"
	"github.com/innexar/afiliados-api/internal/utils"
	"github.com/innexar/afiliados-api/internal/utils/db"
)

type Servico struct {
	Repo       *Repository
	Estruturas *estrutura.Repository
	Gerador    *codigo.Gerador
	Tokens     *auth.Gerenciador
	agora      func() time.Time
}

func NewServico(repo *Repository, estruturas *estrutura.Repository, gerador *codigo.Gerador, tokens *auth.Gerenciador) *Servico {
	return &Servico{Repo: repo, Estruturas: estruturas, Gerador: gerador, Tokens: tokens, agora: time.Now}
}

// Registrar cria o afiliado como pendente, com código de indicação único.
func (s *Servico) Registrar(ctx context.Context, dto RegistroDTO) (*Afiliado, error) {
	email := strings.ToLower(strings.TrimSpace(dto.Email))
	existe, err := s.Repo.EmailExiste(ctx, email)
	if err != nil {
		return nil, err
	}
	if existe {
		return nil, ErrEmailEmUso
	}

	hash, err := utils.HashSenha(dto.Password)
	if err != nil {
		return nil, err
	}
	agora := s.agora()
	a := &Afiliado{
		Nome:            strings.TrimSpace(dto.Name),
		Email:           email,
		SenhaHash:       hash,
		Telefone:        dto.Phone,
		CpfCnpj:         dto.CpfCnpj,
		PixKey:          dto.PixKey,
		PixKeyType:      dto.PixKeyType,
		Status:          StatusPendente,
		AceitouTermosEm: &agora,
	}

	_, err = codigo.Emitir(ctx, "referral", func() string { return s.Gerador.GerarReferral(a.Nome) }, func(code string) error {
		a.ReferralCode = code
		err := s.Repo.Criar(ctx, a)
		if !db.ViolacaoUnica(err) {
			return err
		}
		// a violação pode ser do e-mail (cadastro concorrente) ou do código
		if existe, errEmail := s.Repo.EmailExiste(ctx, email); errEmail == nil && existe {
			return ErrEmailEmUso
		}
		a.ID = uuid.Nil
		return codigo.ErrColisao
	})
	if err != nil {
		return nil, err
	}

	slog.Info("afiliado registrado", "afiliado", a.ID, "referral", a.ReferralCode)
	return a, nil
}

// Login confere as credenciais e o status e emite o token de acesso.
func (s *Servico) Login(ctx context.Context, dto LoginDTO) (*LoginResposta, error) {
	a, err := s.Repo.BuscarPorEmail(ctx, strings.ToLower(strings.TrimSpace(dto.Email)))
	if err != nil {
		if errors.Is(err, ErrAfiliadoNaoEncontrado) {
			return nil, ErrCredenciais
		}
		return nil, err
	}
	if !utils.VerificarSenha(a.SenhaHash, dto.Password) {
		return nil, ErrCredenciais
	}
	switch a.Status {
	case StatusBloqueado:
		return nil, ErrContaBloqueada
	case StatusPendente:
		return nil, ErrContaPendente
	}

	tok, exp, err := s.Tokens.GerarToken(a.ID, a.Email, auth.RoleAfiliado)
	if err != nil {
		return nil, err
	}
	return &LoginResposta{AccessToken: tok, ExpiresAt: exp, Affiliate: resumoDe(a)}, nil
}

func (s *Servico) Perfil(ctx context.Context, id uuid.UUID) (*Afiliado, error) {
	return s.Repo.BuscarPorID(ctx, id)
}

func (s *Servico) AtualizarPerfil(ctx context.Context, id uuid.UUID, dto PerfilDTO) (*Afiliado, error) {
	a, err := s.Repo.BuscarPorID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto.aplicar(a)
	if err := s.Repo.Atualizar(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// AlterarStatus é a ação administrativa de aprovar ou bloquear.
func (s *Servico) AlterarStatus(ctx context.Context, id uuid.UUID, status Status) (*Afiliado, error) {
	if !status.Valido() {
		return nil, ErrStatusInvalido
	}
	if err := s.Repo.AtualizarStatus(ctx, id, status, s.agora()); err != nil {
		return nil, err
	}
	slog.Info("status do afiliado alterado", "afiliado", id, "status", status)
	return s.Repo.BuscarPorID(ctx, id)
}

// DefinirEstrutura associa (ou remove, com nil) a estrutura padrão do afiliado.
func (s *Servico) DefinirEstrutura(ctx context.Context, id uuid.UUID, estruturaID *uuid.UUID) (*Afiliado, error) {
	if estruturaID != nil {
		if _, err := s.Estruturas.BuscarPorID(ctx, *estruturaID); err != nil {
			return nil, err
		}
	}
	if err := s.Repo.DefinirEstrutura(ctx, id, estruturaID); err != nil {
		return nil, err
	}
	return s.Repo.BuscarPorID(ctx, id)
}
