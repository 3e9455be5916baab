package link

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository encapsula o acesso a dados de links e visitas.
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

// ExisteAtivo informa se o afiliado já tem link não removido para o produto.
func (r *Repository) ExisteAtivo(ctx context.Context, afiliadoID, produtoID uuid.UUID) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&Link{}).
		Where("afiliado_id = ? AND produto_id = ?", afiliadoID, produtoID).
		Count(&n).Error
	return n > 0, err
}

// SlugExiste considera também links removidos: o índice de slug não é parcial.
func (r *Repository) SlugExiste(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Unscoped().Model(&Link{}).
		Where("custom_slug = ?", slug).
		Count(&n).Error
	return n > 0, err
}

func (r *Repository) BuscarPorID(ctx context.Context, id uuid.UUID) (*Link, error) {
	var l Link
	if err := r.DB.WithContext(ctx).Preload("Produto").First(&l, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNaoEncontrado
		}
		return nil, err
	}
	return &l, nil
}

// BuscarPorCodigo aceita o código gerado ou o slug personalizado.
func (r *Repository) BuscarPorCodigo(ctx context.Context, code string) (*Link, error) {
	var l Link
	err := r.DB.WithContext(ctx).
		Preload("Produto").
		Where("code = ? OR custom_slug = ?", code, code).
		Take(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNaoEncontrado
		}
		return nil, err
	}
	return &l, nil
}

// ListarPorAfiliado devolve os links ativos, mais recentes primeiro.
func (r *Repository) ListarPorAfiliado(ctx context.Context, afiliadoID uuid.UUID) ([]Link, error) {
	var list []Link
	err := r.DB.WithContext(ctx).
		Preload("Produto").
		Where("afiliado_id = ?", afiliadoID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// Remover faz soft delete, só quando o link pertence ao afiliado.
func (r *Repository) Remover(ctx context.Context, afiliadoID, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).
		Where("id = ? AND afiliado_id = ?", id, afiliadoID).
		Delete(&Link{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLinkNaoEncontrado
	}
	return nil
}

func (r *Repository) incrementar(ctx context.Context, id uuid.UUID, coluna string) error {
	res := r.DB.WithContext(ctx).Model(&Link{}).
		Where("id = ?", id).
		UpdateColumn(coluna, gorm.Expr(coluna+" + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLinkNaoEncontrado
	}
	return nil
}

// IncrementarConversoes soma uma conversão. Link removido não é contado:
// a comissão fica registrada mesmo assim.
func (r *Repository) IncrementarConversoes(ctx context.Context, id uuid.UUID) error {
	err := r.incrementar(ctx, id, "conversions")
	if errors.Is(err, ErrLinkNaoEncontrado) {
		return nil
	}
	return err
}

func (r *Repository) CriarVisita(ctx context.Context, v *Visita) error {
	return r.DB.WithContext(ctx).Create(v).Error
}

func (r *Repository) ContarVisitas(ctx context.Context, afiliadoID uuid.UUID) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&Visita{}).Where("afiliado_id = ?", afiliadoID).Count(&n).Error
	return n, err
}
