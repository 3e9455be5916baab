package saque

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/innexar/afiliados-api/internal/estrutura"
)

// Repository encapsula o acesso a dados de saques.
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

func (r *Repository) Criar(ctx context.Context, s *Saque) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *Repository) BloquearPorID(ctx context.Context, id uuid.UUID) (*Saque, error) {
	var s Saque
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaqueNaoEncontrado
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repository) AtualizarStatus(ctx context.Context, s *Saque) error {
	return r.DB.WithContext(ctx).Model(s).
		Select("status", "rejection_reason", "processed_at", "completed_at", "rejected_at", "updated_at").
		Updates(s).Error
}

func (r *Repository) ListarPorAfiliado(ctx context.Context, afiliadoID uuid.UUID) ([]Saque, error) {
	var list []Saque
	err := r.DB.WithContext(ctx).
		Where("afiliado_id = ?", afiliadoID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// ListarPorStatus é a fila administrativa; status vazio traz todos.
func (r *Repository) ListarPorStatus(ctx context.Context, status Status) ([]Saque, error) {
	var list []Saque
	q := r.DB.WithContext(ctx).Order("created_at ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&list).Error
	return list, err
}

// SomarReservado soma os saques em aberto (pendentes ou em processamento).
// Saque concluído sai da conta: o pagamento marca as comissões como pagas.
func (r *Repository) SomarReservado(ctx context.Context, afiliadoID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.DB.WithContext(ctx).Model(&Saque{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("afiliado_id = ? AND status IN ?", afiliadoID, []Status{StatusPendente, StatusProcessando}).
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return estrutura.Arredondar(total), nil
}
