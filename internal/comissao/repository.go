package comissao

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/innexar/afiliados-api/internal/estrutura"
)

// Repository encapsula o acesso a dados de comissões.
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

func (r *Repository) Criar(ctx context.Context, c *Comissao) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *Repository) BuscarPorID(ctx context.Context, id uuid.UUID) (*Comissao, error) {
	var c Comissao
	if err := r.DB.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComissaoNaoEncontrada
		}
		return nil, err
	}
	return &c, nil
}

// BloquearPorID lê a comissão com SELECT ... FOR UPDATE.
func (r *Repository) BloquearPorID(ctx context.Context, id uuid.UUID) (*Comissao, error) {
	var c Comissao
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComissaoNaoEncontrada
		}
		return nil, err
	}
	return &c, nil
}

// AtualizarStatus grava só o status e as datas: o resto da comissão é imutável.
func (r *Repository) AtualizarStatus(ctx context.Context, c *Comissao) error {
	return r.DB.WithContext(ctx).Model(c).
		Select("status", "approved_at", "paid_at", "cancelled_at", "updated_at").
		Updates(c).Error
}

// ContarNovosClientes conta as comissões anteriores marcadas como novo
// cliente. Com produtoID, a contagem é só daquele produto. Canceladas entram
// na conta para que o bônus nunca seja pago duas vezes.
func (r *Repository) ContarNovosClientes(ctx context.Context, afiliadoID uuid.UUID, produtoID *uuid.UUID) (int64, error) {
	var n int64
	q := r.DB.WithContext(ctx).Model(&Comissao{}).
		Where("afiliado_id = ? AND novo_cliente = ?", afiliadoID, true)
	if produtoID != nil {
		q = q.Where("produto_id = ?", *produtoID)
	}
	err := q.Count(&n).Error
	return n, err
}

// Listar devolve as comissões do afiliado, mais recentes primeiro, com o logo
// do produto quando ele ainda existir.
func (r *Repository) Listar(ctx context.Context, afiliadoID uuid.UUID, status *Status) ([]Comissao, error) {
	var list []Comissao
	q := r.DB.WithContext(ctx).
		Model(&Comissao{}).
		Select("comissoes.*, produtos.logo_url AS produto_logo").
		Joins("LEFT JOIN produtos ON produtos.id = comissoes.produto_id").
		Where("comissoes.afiliado_id = ?", afiliadoID).
		Order("comissoes.created_at DESC")
	if status != nil {
		q = q.Where("comissoes.status = ?", *status)
	}
	err := q.Find(&list).Error
	return list, err
}

type somaStatus struct {
	Status Status
	Total  decimal.Decimal
}

// SomarPorStatus soma amount agrupado por status.
func (r *Repository) SomarPorStatus(ctx context.Context, afiliadoID uuid.UUID) (map[Status]decimal.Decimal, error) {
	var linhas []somaStatus
	err := r.DB.WithContext(ctx).Model(&Comissao{}).
		Select("status, COALESCE(SUM(amount), 0) AS total").
		Where("afiliado_id = ?", afiliadoID).
		Group("status").
		Scan(&linhas).Error
	if err != nil {
		return nil, err
	}
	somas := make(map[Status]decimal.Decimal, len(linhas))
	for _, l := range linhas {
		somas[l.Status] = estrutura.Arredondar(l.Total)
	}
	return somas, nil
}

// SomarAprovadas é a soma das comissões aprovadas do afiliado.
func (r *Repository) SomarAprovadas(ctx context.Context, afiliadoID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.DB.WithContext(ctx).Model(&Comissao{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("afiliado_id = ? AND status = ?", afiliadoID, StatusAprovada).
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return estrutura.Arredondar(total), nil
}

// Contar conta todas as comissões do afiliado, canceladas inclusive. É o
// total de conversões do painel.
func (r *Repository) Contar(ctx context.Context, afiliadoID uuid.UUID) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&Comissao{}).Where("afiliado_id = ?", afiliadoID).Count(&n).Error
	return n, err
}

