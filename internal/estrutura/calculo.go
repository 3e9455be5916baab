package estrutura

import (
	"github.com/shopspring/decimal"

	"github.com/innexar/afiliados-api/internal/apperr"
)

// CasasDecimais da unidade monetária.
const CasasDecimais = 2

var (
	ErrValorInvalido = apperr.NovoValidacao("INVALID_INPUT",
		"O valor do negócio não pode ser negativo")
	ErrFaixaInexistente = apperr.NovoRegraNegocio("NO_APPLICABLE_TIER",
		"Nenhuma faixa de comissão se aplica ao valor informado")
)

// Detalhamento é o resultado do cálculo de uma comissão.
type Detalhamento struct {
	WeeklyBase       decimal.Decimal `json:"weekly_base"`
	CommissionRate   decimal.Decimal `json:"commission_rate"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	PerformanceBonus decimal.Decimal `json:"performance_bonus"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
}

// Arredondar leva o valor à unidade mínima da moeda, meio para cima.
func Arredondar(v decimal.Decimal) decimal.Decimal {
	return v.Round(CasasDecimais)
}

// Calcular aplica a estrutura ao valor do negócio. A estrutura é confiável: as
// faixas foram validadas na criação.
func Calcular(dealValue decimal.Decimal, e *Estrutura) (Detalhamento, error) {
	if dealValue.IsNegative() {
		return Detalhamento{}, ErrValorInvalido
	}
	base := Arredondar(e.WeeklyBase)
	if dealValue.IsZero() {
		return Detalhamento{WeeklyBase: base, TotalAmount: base}, nil
	}

	faixa, ok := e.FaixaPara(dealValue)
	if !ok {
		return Detalhamento{}, ErrFaixaInexistente
	}

	valor := Arredondar(dealValue.Mul(faixa.Rate))
	bonus := Arredondar(e.BonusPara(dealValue))

	return Detalhamento{
		WeeklyBase:       base,
		CommissionRate:   faixa.Rate,
		CommissionAmount: valor,
		PerformanceBonus: bonus,
		TotalAmount:      base.Add(valor).Add(bonus),
	}, nil
}

// FaixaPara devolve a faixa com Min <= v < Max.
func (e *Estrutura) FaixaPara(v decimal.Decimal) (Faixa, bool) {
	for _, f := range e.Tiers {
		if f.Contem(v) {
			return f, true
		}
	}
	return Faixa{}, false
}

// BonusPara devolve o bônus de maior threshold atingido por v. Bônus não se somam.
func (e *Estrutura) BonusPara(v decimal.Decimal) decimal.Decimal {
	var melhor *Bonus
	for i := range e.PerformanceBonuses {
		b := &e.PerformanceBonuses[i]
		if v.LessThan(b.Threshold) {
			continue
		}
		if melhor == nil || b.Threshold.GreaterThan(melhor.Threshold) {
			melhor = b
		}
	}
	if melhor == nil {
		return decimal.Zero
	}
	return melhor.Bonus
}

// CalcularRecorrente é a comissão sobre renovações de assinatura.
func CalcularRecorrente(dealValue decimal.Decimal, e *Estrutura) (decimal.Decimal, error) {
	if dealValue.IsNegative() {
		return decimal.Zero, ErrValorInvalido
	}
	return Arredondar(dealValue.Mul(e.RecurringCommissionRate)), nil
}

// BonusNovoCliente devolve o bônus quando o novo cliente, somado aos
// anteriores, atinge exatamente o limite. Como a contagem só cresce, o bônus
// sai uma única vez.
func BonusNovoCliente(anteriores int64, e *Estrutura) decimal.Decimal {
	if e.NewClientThreshold <= 0 || anteriores+1 != int64(e.NewClientThreshold) {
		return decimal.Zero
	}
	return Arredondar(e.NewClientBonus)
}
