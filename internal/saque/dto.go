package saque

import "github.com/shopspring/decimal"

type SolicitacaoDTO struct {
	Amount *decimal.Decimal `json:"amount"`
}

type StatusDTO struct {
	Status Status `json:"status" validate:"required"`
	Reason string `json:"reason" validate:"max=500"`
}
