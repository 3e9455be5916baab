package estrutura

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/innexar/afiliados-api/internal/utils/db"
)

// Repository encapsula operações de banco para Estrutura.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// WithDB retorna uma cópia do repo usando um *gorm.DB específico (ex.: tx).
func (r *Repository) WithDB(db *gorm.DB) *Repository {
	if db == nil {
		db = r.DB
	}
	return &Repository{DB: db}
}

func (r *Repository) Criar(ctx context.Context, e *Estrutura) error {
	err := r.DB.WithContext(ctx).Create(e).Error
	if db.ViolacaoUnica(err) {
		return ErrNomeEmUso
	}
	return err
}

func (r *Repository) Atualizar(ctx context.Context, e *Estrutura) error {
	err := r.DB.WithContext(ctx).Save(e).Error
	if db.ViolacaoUnica(err) {
		return ErrNomeEmUso
	}
	return err
}

// BuscarPorID devolve ErrEstruturaNaoEncontrada quando não existe.
func (r *Repository) BuscarPorID(ctx context.Context, id uuid.UUID) (*Estrutura, error) {
	var e Estrutura
	if err := r.DB.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEstruturaNaoEncontrada.ComMensagem("Estrutura de comissão não encontrada")
		}
		return nil, err
	}
	return &e, nil
}

func (r *Repository) Listar(ctx context.Context, apenasAtivas bool) ([]Estrutura, error) {
	var list []Estrutura
	q := r.DB.WithContext(ctx).Order("padrao DESC, created_at ASC")
	if apenasAtivas {
		q = q.Where("ativa = ?", true)
	}
	err := q.Find(&list).Error
	return list, err
}

// BuscarPadrao devolve a estrutura ativa marcada como padrão ou, na falta dela,
// a ativa mais antiga.
func (r *Repository) BuscarPadrao(ctx context.Context) (*Estrutura, error) {
	var e Estrutura
	err := r.DB.WithContext(ctx).
		Where("ativa = ?", true).
		Order("padrao DESC, created_at ASC").
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEstruturaNaoEncontrada
		}
		return nil, err
	}
	return &e, nil
}

// LimparPadrao desmarca todas as estruturas padrão exceto a informada.
func (r *Repository) LimparPadrao(ctx context.Context, exceto uuid.UUID) error {
	return r.DB.WithContext(ctx).
		Model(&Estrutura{}).
		Where("padrao = ? AND id <> ?", true, exceto).
		Update("padrao", false).Error
}

// Resolver escolhe a estrutura do cálculo: a explícita (que precisa existir e
// estar ativa), senão a padrão do afiliado, senão a padrão global.
func (r *Repository) Resolver(ctx context.Context, explicita, doAfiliado *uuid.UUID) (*Estrutura, error) {
	if explicita != nil {
		e, err := r.BuscarPorID(ctx, *explicita)
		if err != nil {
			return nil, err
		}
		if !e.Ativa {
			return nil, ErrEstruturaNaoEncontrada.ComMensagem("Estrutura de comissão inativa")
		}
		return e, nil
	}
	if doAfiliado != nil {
		e, err := r.BuscarPorID(ctx, *doAfiliado)
		switch {
		case err == nil && e.Ativa:
			return e, nil
		case err != nil && !errors.Is(err, ErrEstruturaNaoEncontrada):
			return nil, err
		}
	}
	return r.BuscarPadrao(ctx)
}
