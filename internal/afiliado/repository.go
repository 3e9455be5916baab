package afiliado

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository encapsula o acesso a dados de afiliados.
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

func (r *Repository) Criar(ctx context.Context, a *Afiliado) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *Repository) BuscarPorID(ctx context.Context, id uuid.UUID) (*Afiliado, error) {
	var a Afiliado
	if err := r.DB.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAfiliadoNaoEncontrado
		}
		return nil, err
	}
	return &a, nil
}

// BloquearPorID lê o afiliado com SELECT ... FOR UPDATE. Serializa operações
// de saldo do mesmo afiliado; só faz sentido dentro de transação.
func (r *Repository) BloquearPorID(ctx context.Context, id uuid.UUID) (*Afiliado, error) {
	var a Afiliado
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAfiliadoNaoEncontrado
		}
		return nil, err
	}
	return &a, nil
}

func (r *Repository) BuscarPorEmail(ctx context.Context, email string) (*Afiliado, error) {
	var a Afiliado
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAfiliadoNaoEncontrado
		}
		return nil, err
	}
	return &a, nil
}

func (r *Repository) EmailExiste(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&Afiliado{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

// Listar devolve os afiliados mais recentes primeiro; status vazio não filtra.
func (r *Repository) Listar(ctx context.Context, status Status) ([]Afiliado, error) {
	var list []Afiliado
	q := r.DB.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *Repository) Atualizar(ctx context.Context, a *Afiliado) error {
	return r.DB.WithContext(ctx).Save(a).Error
}

// AtualizarStatus muda o status; a primeira ativação grava aprovado_em.
func (r *Repository) AtualizarStatus(ctx context.Context, id uuid.UUID, status Status, agora time.Time) error {
	updates := map[string]interface{}{"status": status}
	if status == StatusAtivo {
		updates["aprovado_em"] = gorm.Expr("COALESCE(aprovado_em, ?)", agora)
	}
	res := r.DB.WithContext(ctx).Model(&Afiliado{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAfiliadoNaoEncontrado
	}
	return nil
}

func (r *Repository) DefinirEstrutura(ctx context.Context, id uuid.UUID, estruturaID *uuid.UUID) error {
	res := r.DB.WithContext(ctx).Model(&Afiliado{}).Where("id = ?", id).Update("estrutura_id", estruturaID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAfiliadoNaoEncontrado
	}
	return nil
}
