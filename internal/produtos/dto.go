package produtos

import (
	"github.com/shopspring/decimal"

	"github.com/innexar/afiliados-api/internal/apperr"
)

type ProdutoDTO struct {
	Name           string          `json:"name" validate:"required,max=255"`
	Slug           string          `json:"slug" validate:"required,max=120"`
	Description    string          `json:"description"`
	LogoURL        string          `json:"logoUrl" validate:"omitempty,url"`
	CommissionRate decimal.Decimal `json:"commissionRate" validate:"gte=0,lte=1"`
	BaseURL        string          `json:"baseUrl" validate:"required,url"`
	CheckoutURL    string          `json:"checkoutUrl" validate:"omitempty,url"`
	CookieDays     int             `json:"cookieDays" validate:"omitempty,gte=1,lte=365"`
	IsActive       *bool           `json:"isActive"`
}

// validar cobre o que as tags não alcançam: a coluna guarda 4 casas.
func (d *ProdutoDTO) validar() error {
	if !d.CommissionRate.Equal(d.CommissionRate.Round(4)) {
		return apperr.ErrEntradaInvalida.ComCampos(map[string]string{
			"commissionRate": "no máximo 4 casas decimais",
		})
	}
	return nil
}

// aplicar copia os campos do DTO para o produto.
func (d *ProdutoDTO) aplicar(p *Produto) {
	p.Nome = d.Name
	p.Slug = d.Slug
	p.Descricao = d.Description
	p.LogoURL = d.LogoURL
	p.CommissionRate = d.CommissionRate
	p.BaseURL = d.BaseURL
	p.CheckoutURL = d.CheckoutURL
	p.CookieDays = d.CookieDays
	if p.CookieDays == 0 {
		p.CookieDays = 30
	}
	if d.IsActive != nil {
		p.Ativo = *d.IsActive
	}
}
