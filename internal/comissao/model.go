package comissao

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/innexar/afiliados-api/internal/apperr"
	"github.com/innexar/afiliados-api/internal/models"
)

type Status string

const (
	StatusPendente  Status = "pending"
	StatusAprovada  Status = "approved"
	StatusPaga      Status = "paid"
	StatusCancelada Status = "cancelled"
)

// transicoes é a tabela fechada de mudanças de status permitidas.
var transicoes = map[Status][]Status{
	StatusPendente: {StatusAprovada, StatusCancelada},
	StatusAprovada: {StatusPaga, StatusCancelada},
}

func (s Status) Valido() bool {
	switch s {
	case StatusPendente, StatusAprovada, StatusPaga, StatusCancelada:
		return true
	}
	return false
}

// PodeIrPara informa se a transição s -> novo é permitida.
func (s Status) PodeIrPara(novo Status) bool {
	for _, p := range transicoes[s] {
		if p == novo {
			return true
		}
	}
	return false
}

type Tipo string

const (
	TipoVenda      Tipo = "sale"
	TipoRecorrente Tipo = "recurring"
)

// Comissao é imutável depois de criada, exceto pelo status e suas datas.
// Link e produto ficam como referência solta (sem FK) mais um snapshot do nome.
type Comissao struct {
	models.Base
	AfiliadoID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_comissoes_afiliado_status,priority:1" json:"affiliateId"`
	LinkID           *uuid.UUID      `gorm:"type:uuid;index" json:"linkId,omitempty"`
	ProdutoID        *uuid.UUID      `gorm:"type:uuid" json:"productId,omitempty"`
	ProdutoNome      string          `gorm:"size:255" json:"productName"`
	EstruturaID      *uuid.UUID      `gorm:"type:uuid" json:"structureId,omitempty"`
	Tipo             Tipo            `gorm:"size:20;not null;default:'sale'" json:"kind"`
	DealValue        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"dealValue"`
	CommissionRate   decimal.Decimal `gorm:"type:numeric(7,4);not null" json:"commissionRate"`
	CommissionAmount decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"commissionAmount"`
	WeeklyBase       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"weeklyBase"`
	PerformanceBonus decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"performanceBonus"`
	NewClientBonus   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"newClientBonus"`
	NovoCliente      bool            `gorm:"not null" json:"newClient"`
	Amount           decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Currency         string          `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Status           Status          `gorm:"size:20;not null;default:'pending';index:idx_comissoes_afiliado_status,priority:2" json:"status"`
	PaymentPeriod    string          `gorm:"size:20" json:"paymentPeriod,omitempty"`
	Notes            string          `gorm:"type:text" json:"notes,omitempty"`
	ApprovedAt       *time.Time      `json:"approvedAt,omitempty"`
	PaidAt           *time.Time      `json:"paidAt,omitempty"`
	CancelledAt      *time.Time      `json:"cancelledAt,omitempty"`

	// preenchido só na listagem
	ProdutoLogo string `gorm:"->;-:migration" json:"productLogo,omitempty"`
}

func (Comissao) TableName() string { return "comissoes" }

// carimbar grava a data correspondente ao novo status.
func (c *Comissao) carimbar(novo Status, agora time.Time) {
	switch novo {
	case StatusAprovada:
		c.ApprovedAt = &agora
	case StatusPaga:
		c.PaidAt = &agora
	case StatusCancelada:
		c.CancelledAt = &agora
	}
	c.Status = novo
}

var (
	ErrComissaoNaoEncontrada = apperr.NovoNaoEncontrado("COMMISSION_NOT_FOUND", "Comissão não encontrada")
	ErrTransicaoInvalida     = apperr.NovoRegraNegocio("INVALID_TRANSITION", "Transição de status inválida")
	ErrStatusInvalido        = apperr.NovoValidacao("INVALID_STATUS",
		"Status inválido. Use 'pending', 'approved', 'paid' ou 'cancelled'.")
	ErrLinkDeOutroAfiliado = apperr.NovoValidacao("LINK_MISMATCH", "O link não pertence ao afiliado informado")
)

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Comissao{})
}
