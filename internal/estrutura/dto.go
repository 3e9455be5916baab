package estrutura

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Valores padrão de uma estrutura nova.
var (
	padraoWeeklyBase = decimal.NewFromInt(100)
	padraoRecorrente = decimal.RequireFromString("0.10")
	padraoBonusNovo  = decimal.NewFromInt(100)
	padraoLimiteNovo = 10
	padraoMoeda      = "USD"
)

type EstruturaDTO struct {
	Name                    string           `json:"name" validate:"required,max=120"`
	WeeklyBase              *decimal.Decimal `json:"weekly_base"`
	Currency                string           `json:"currency" validate:"omitempty,len=3"`
	TieredCommissions       []Faixa          `json:"tiered_commissions" validate:"required,min=1"`
	PerformanceBonuses      []Bonus          `json:"performance_bonuses"`
	RecurringCommissionRate *decimal.Decimal `json:"recurring_commission_rate"`
	NewClientBonus          *decimal.Decimal `json:"new_client_bonus"`
	NewClientThreshold      *int             `json:"new_client_threshold"`
	NewClientScope          string           `json:"new_client_scope" validate:"omitempty,oneof=affiliate product"`
	IsActive                *bool            `json:"is_active"`
	IsDefault               bool             `json:"is_default"`
}

// aplicar preenche e com o DTO; campos omitidos recebem os valores padrão.
func (d *EstruturaDTO) aplicar(e *Estrutura) {
	e.Nome = d.Name
	e.WeeklyBase = valorOu(d.WeeklyBase, padraoWeeklyBase)
	e.Currency = d.Currency
	if e.Currency == "" {
		e.Currency = padraoMoeda
	}
	e.Tiers = d.TieredCommissions
	e.PerformanceBonuses = d.PerformanceBonuses
	if e.PerformanceBonuses == nil {
		e.PerformanceBonuses = []Bonus{}
	}
	e.RecurringCommissionRate = valorOu(d.RecurringCommissionRate, padraoRecorrente)
	e.NewClientBonus = valorOu(d.NewClientBonus, padraoBonusNovo)
	e.NewClientThreshold = padraoLimiteNovo
	if d.NewClientThreshold != nil {
		e.NewClientThreshold = *d.NewClientThreshold
	}
	e.NewClientScope = Escopo(d.NewClientScope)
	if e.NewClientScope == "" {
		e.NewClientScope = EscopoAfiliado
	}
	e.Ativa = true
	if d.IsActive != nil {
		e.Ativa = *d.IsActive
	}
	e.Padrao = d.IsDefault
}

func valorOu(v *decimal.Decimal, padrao decimal.Decimal) decimal.Decimal {
	if v == nil {
		return padrao
	}
	return *v
}

type CalculoDTO struct {
	DealValue   *decimal.Decimal `json:"deal_value"`
	StructureID *uuid.UUID       `json:"structure_id"`
}

// ResultadoCalculo é a resposta de POST /commissions/calculate.
type ResultadoCalculo struct {
	DealValue     decimal.Decimal `json:"deal_value"`
	StructureUsed string          `json:"structure_used"`
	StructureID   uuid.UUID       `json:"structure_id"`
	Calculation   Detalhamento    `json:"calculation"`
}
