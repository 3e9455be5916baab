package comissao

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type StatusDTO struct {
	Status Status `json:"status" validate:"required"`
}

// ConversaoDTO é o corpo de POST /conversions.
type ConversaoDTO struct {
	Code          string           `json:"code" validate:"required,max=80"`
	DealValue     *decimal.Decimal `json:"deal_value"`
	NewClient     bool             `json:"new_client"`
	Recurring     bool             `json:"recurring"`
	Notes         string           `json:"notes" validate:"max=2000"`
	PaymentPeriod string           `json:"payment_period" validate:"max=20"`
}

// LancamentoDTO é o corpo de POST /admin/commissions (lançamento manual).
type LancamentoDTO struct {
	AffiliateID   uuid.UUID        `json:"affiliate_id" validate:"required"`
	LinkID        *uuid.UUID       `json:"link_id"`
	ProductID     *uuid.UUID       `json:"product_id"`
	StructureID   *uuid.UUID       `json:"structure_id"`
	DealValue     *decimal.Decimal `json:"deal_value"`
	NewClient     bool             `json:"new_client"`
	Recurring     bool             `json:"recurring"`
	Notes         string           `json:"notes" validate:"max=2000"`
	PaymentPeriod string           `json:"payment_period" validate:"max=20"`
}
