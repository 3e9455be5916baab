package estrutura

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/innexar/afiliados-api/internal/apperr"
)

type Servico struct {
	Repo *Repository
}

func NewServico(repo *Repository) *Servico {
	return &Servico{Repo: repo}
}

// Criar valida e grava uma estrutura nova. Se ela for padrão, as demais deixam de ser.
func (s *Servico) Criar(ctx context.Context, dto EstruturaDTO) (*Estrutura, error) {
	var e Estrutura
	dto.aplicar(&e)
	if err := Validar(&e); err != nil {
		return nil, err
	}

	err := s.Repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithDB(tx)
		if err := repo.Criar(ctx, &e); err != nil {
			return err
		}
		if e.Padrao {
			return repo.LimparPadrao(ctx, e.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Atualizar substitui a configuração. Comissões já registradas guardam a taxa
// aplicada e não mudam.
func (s *Servico) Atualizar(ctx context.Context, id uuid.UUID, dto EstruturaDTO) (*Estrutura, error) {
	var e *Estrutura
	err := s.Repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithDB(tx)
		atual, err := repo.BuscarPorID(ctx, id)
		if err != nil {
			return err
		}
		dto.aplicar(atual)
		if err := Validar(atual); err != nil {
			return err
		}
		if err := repo.Atualizar(ctx, atual); err != nil {
			return err
		}
		e = atual
		if e.Padrao {
			return repo.LimparPadrao(ctx, e.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Simular calcula a comissão sem registrá-la.
func (s *Servico) Simular(ctx context.Context, dto CalculoDTO) (*ResultadoCalculo, error) {
	if dto.DealValue == nil {
		return nil, apperr.ErrEntradaInvalida.ComCampos(map[string]string{"deal_value": "campo obrigatório"})
	}
	e, err := s.Repo.Resolver(ctx, dto.StructureID, nil)
	if err != nil {
		return nil, err
	}
	calc, err := Calcular(*dto.DealValue, e)
	if err != nil {
		return nil, err
	}
	return &ResultadoCalculo{
		DealValue:     *dto.DealValue,
		StructureUsed: e.Nome,
		StructureID:   e.ID,
		Calculation:   calc,
	}, nil
}
