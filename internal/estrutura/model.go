package estrutura

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/innexar/afiliados-api/internal/apperr"
	"github.com/innexar/afiliados-api/internal/models"
)

// Faixa é um intervalo [Min, Max) de valor de venda com sua taxa. Max nulo
// significa sem limite superior.
type Faixa struct {
	Min  decimal.Decimal  `json:"min"`
	Max  *decimal.Decimal `json:"max"`
	Rate decimal.Decimal  `json:"rate"`
}

// Contem informa se v pertence à faixa.
func (f Faixa) Contem(v decimal.Decimal) bool {
	if v.LessThan(f.Min) {
		return false
	}
	return f.Max == nil || v.LessThan(*f.Max)
}

// Bonus de desempenho liberado quando o valor da venda atinge Threshold.
type Bonus struct {
	Threshold decimal.Decimal `json:"threshold"`
	Bonus     decimal.Decimal `json:"bonus"`
}

// Escopo define como os "novos clientes" são contados para o bônus.
type Escopo string

const (
	EscopoAfiliado Escopo = "affiliate"
	EscopoProduto  Escopo = "product"
)

// Estrutura é a configuração de taxas e bônus usada no cálculo de comissões.
type Estrutura struct {
	models.Base
	Nome                    string          `gorm:"size:120;not null;uniqueIndex" json:"name"`
	WeeklyBase              decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"weekly_base"`
	Currency                string          `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Tiers                   []Faixa         `gorm:"type:jsonb;serializer:json;not null" json:"tiered_commissions"`
	PerformanceBonuses      []Bonus         `gorm:"type:jsonb;serializer:json;not null" json:"performance_bonuses"`
	RecurringCommissionRate decimal.Decimal `gorm:"type:numeric(7,4);not null;default:0" json:"recurring_commission_rate"`
	NewClientBonus          decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"new_client_bonus"`
	NewClientThreshold      int             `gorm:"not null;default:0" json:"new_client_threshold"`
	NewClientScope          Escopo          `gorm:"size:20;not null;default:'affiliate'" json:"new_client_scope"`
	Ativa                   bool            `gorm:"not null" json:"is_active"`
	Padrao                  bool            `gorm:"not null" json:"is_default"`
}

func (Estrutura) TableName() string { return "estruturas" }

var (
	ErrEstruturaNaoEncontrada = apperr.NovoNaoEncontrado("STRUCTURE_NOT_FOUND",
		"Nenhuma estrutura de comissão ativa encontrada")
	ErrNomeEmUso = apperr.NovoConflito("STRUCTURE_NAME_TAKEN",
		"Já existe uma estrutura com este nome")
)

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Estrutura{})
}
