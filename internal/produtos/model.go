package produtos

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/innexar/afiliados-api/internal/apperr"
	"github.com/innexar/afiliados-api/internal/models"
)

// Produto é uma oferta SaaS divulgada pelos afiliados.
type Produto struct {
	models.Base
	Nome           string          `gorm:"size:255;not null" json:"name"`
	Slug           string          `gorm:"size:120;not null;uniqueIndex" json:"slug"`
	Descricao      string          `gorm:"type:text" json:"description"`
	LogoURL        string          `gorm:"size:500" json:"logoUrl"`
	CommissionRate decimal.Decimal `gorm:"type:numeric(7,4);not null;default:0" json:"commissionRate"`
	BaseURL        string          `gorm:"size:500;not null" json:"baseUrl"`
	CheckoutURL    string          `gorm:"size:500" json:"checkoutUrl"`
	CookieDays     int             `gorm:"not null;default:30" json:"cookieDays"`
	Ativo          bool            `gorm:"not null;index" json:"isActive"`
}

// URLDestino é a URL usada nos links: checkout quando houver, senão a base.
func (p *Produto) URLDestino() string {
	if p.CheckoutURL != "" {
		return p.CheckoutURL
	}
	return p.BaseURL
}

var (
	ErrProdutoNaoEncontrado = apperr.NovoNaoEncontrado("PRODUCT_NOT_FOUND", "Produto não encontrado")
	ErrProdutoInativo       = apperr.NovoRegraNegocio("PRODUCT_INACTIVE", "Produto inativo")
	ErrSlugEmUso            = apperr.NovoConflito("PRODUCT_SLUG_TAKEN", "Já existe um produto com este slug")
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Produto{})
}
