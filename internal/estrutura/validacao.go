package estrutura

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/innexar/afiliados-api/internal/apperr"
)

var um = decimal.NewFromInt(1)

// Validar confere as regras da estrutura: faixas contíguas e crescentes a
// partir de zero, só a última sem teto, taxas entre 0 e 1 e bônus não negativos.
// Os bônus são ordenados por threshold.
func Validar(e *Estrutura) error {
	campos := map[string]string{}

	if strings.TrimSpace(e.Nome) == "" {
		campos["name"] = "campo obrigatório"
	}
	if len(e.Currency) != 3 || strings.ToUpper(e.Currency) != e.Currency {
		campos["currency"] = "use o código ISO de 3 letras maiúsculas"
	}
	if e.WeeklyBase.IsNegative() {
		campos["weekly_base"] = "não pode ser negativo"
	}
	if !taxaValida(e.RecurringCommissionRate) {
		campos["recurring_commission_rate"] = "deve estar entre 0 e 1, com até 4 casas"
	}
	if e.NewClientBonus.IsNegative() {
		campos["new_client_bonus"] = "não pode ser negativo"
	}
	if e.NewClientThreshold < 0 {
		campos["new_client_threshold"] = "não pode ser negativo"
	}
	if e.NewClientScope != EscopoAfiliado && e.NewClientScope != EscopoProduto {
		campos["new_client_scope"] = "valor deve ser um de: affiliate product"
	}

	validarFaixas(e.Tiers, campos)
	validarBonus(e.PerformanceBonuses, campos)

	if len(campos) > 0 {
		return apperr.ErrEntradaInvalida.
			ComMensagem("Estrutura de comissão inválida").
			ComCampos(campos)
	}

	sort.SliceStable(e.PerformanceBonuses, func(i, j int) bool {
		return e.PerformanceBonuses[i].Threshold.LessThan(e.PerformanceBonuses[j].Threshold)
	})
	return nil
}

func validarFaixas(faixas []Faixa, campos map[string]string) {
	if len(faixas) == 0 {
		campos["tiered_commissions"] = "informe ao menos uma faixa"
		return
	}
	if !faixas[0].Min.IsZero() {
		campos["tiered_commissions[0].min"] = "a primeira faixa deve começar em 0"
	}

	ultima := len(faixas) - 1
	for i, f := range faixas {
		chave := fmt.Sprintf("tiered_commissions[%d]", i)
		if !taxaValida(f.Rate) {
			campos[chave+".rate"] = "deve estar entre 0 e 1, com até 4 casas"
		}
		if f.Max != nil && !f.Max.GreaterThan(f.Min) {
			campos[chave+".max"] = "deve ser maior que min"
		}
		if i == ultima {
			continue
		}
		if f.Max == nil {
			campos[chave+".max"] = "apenas a última faixa pode ser ilimitada"
			continue
		}
		if !f.Max.Equal(faixas[i+1].Min) {
			campos[fmt.Sprintf("tiered_commissions[%d].min", i+1)] = "as faixas devem ser contíguas e crescentes"
		}
	}
}

func validarBonus(bonus []Bonus, campos map[string]string) {
	vistos := map[string]bool{}
	for i, b := range bonus {
		chave := fmt.Sprintf("performance_bonuses[%d]", i)
		if b.Threshold.IsNegative() {
			campos[chave+".threshold"] = "não pode ser negativo"
		}
		if b.Bonus.IsNegative() {
			campos[chave+".bonus"] = "não pode ser negativo"
		}
		k := b.Threshold.String()
		if vistos[k] {
			campos[chave+".threshold"] = "threshold repetido"
		}
		vistos[k] = true
	}
}

// taxaValida aceita de 0 a 1 com até 4 casas, a precisão das colunas de taxa.
func taxaValida(t decimal.Decimal) bool {
	return !t.IsNegative() && !t.GreaterThan(um) && t.Equal(t.Round(4))
}
