package produtos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/innexar/afiliados-api/internal/utils/db"
)

// Repository encapsula o acesso a dados de produtos.
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

func (r *Repository) Criar(ctx context.Context, p *Produto) error {
	err := r.DB.WithContext(ctx).Create(p).Error
	if db.ViolacaoUnica(err) {
		return ErrSlugEmUso
	}
	return err
}

// BuscarPorID devolve ErrProdutoNaoEncontrado quando não existe.
func (r *Repository) BuscarPorID(ctx context.Context, id uuid.UUID) (*Produto, error) {
	var p Produto
	if err := r.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProdutoNaoEncontrado
		}
		return nil, err
	}
	return &p, nil
}

// Listar devolve os produtos ordenados por nome; apenasAtivos filtra os inativos.
func (r *Repository) Listar(ctx context.Context, apenasAtivos bool) ([]Produto, error) {
	var ps []Produto
	q := r.DB.WithContext(ctx).Order("nome ASC")
	if apenasAtivos {
		q = q.Where("ativo = ?", true)
	}
	err := q.Find(&ps).Error
	return ps, err
}

func (r *Repository) Atualizar(ctx context.Context, p *Produto) error {
	err := r.DB.WithContext(ctx).Save(p).Error
	if db.ViolacaoUnica(err) {
		return ErrSlugEmUso
	}
	return err
}
