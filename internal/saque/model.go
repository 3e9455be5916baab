package saque

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/innexar/afiliados-api/internal/apperr"
	"github.com/innexar/afiliados-api/internal/models"
)

// MinimoSaque é o menor valor aceito num pedido de saque.
var MinimoSaque = decimal.NewFromInt(50)

const MetodoPix = "pix"

type Status string

const (
	StatusPendente    Status = "pending"
	StatusProcessando Status = "processing"
	StatusConcluido   Status = "completed"
	StatusRejeitado   Status = "rejected"
)

var transicoes = map[Status][]Status{
	StatusPendente:    {StatusProcessando, StatusRejeitado},
	StatusProcessando: {StatusConcluido, StatusRejeitado},
}

func (s Status) Valido() bool {
	switch s {
	case StatusPendente, StatusProcessando, StatusConcluido, StatusRejeitado:
		return true
	}
	return false
}

func (s Status) PodeIrPara(novo Status) bool {
	for _, p := range transicoes[s] {
		if p == novo {
			return true
		}
	}
	return false
}

// Saque é um pedido de pagamento do saldo aprovado. A chave PIX é copiada do
// perfil no momento do pedido.
type Saque struct {
	models.Base
	AfiliadoID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_saques_afiliado_status,priority:1" json:"affiliateId"`
	Amount          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Method          string          `gorm:"size:20;not null;default:'pix'" json:"method"`
	PixKey          string          `gorm:"size:255;not null" json:"pixKey"`
	PixKeyType      string          `gorm:"size:20" json:"pixKeyType,omitempty"`
	Status          Status          `gorm:"size:20;not null;default:'pending';index:idx_saques_afiliado_status,priority:2" json:"status"`
	RejectionReason string          `gorm:"size:500" json:"rejectionReason,omitempty"`
	ProcessedAt     *time.Time      `json:"processedAt,omitempty"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
	RejectedAt      *time.Time      `json:"rejectedAt,omitempty"`
}

func (Saque) TableName() string { return "saques" }

func (s *Saque) carimbar(novo Status, motivo string, agora time.Time) {
	switch novo {
	case StatusProcessando:
		s.ProcessedAt = &agora
	case StatusConcluido:
		s.CompletedAt = &agora
	case StatusRejeitado:
		s.RejectedAt = &agora
		s.RejectionReason = motivo
	}
	s.Status = novo
}

var (
	ErrValorMinimo        = apperr.NovoValidacao("INVALID_AMOUNT", "Valor mínimo para saque é R$ 50,00")
	ErrSemChavePix        = apperr.NovoRegraNegocio("MISSING_PAYOUT_METHOD", "Configure sua chave PIX antes de solicitar um saque")
	ErrSaldoInsuficiente  = apperr.NovoRegraNegocio("INSUFFICIENT_BALANCE", "Saldo insuficiente para saque")
	ErrSaqueNaoEncontrado = apperr.NovoNaoEncontrado("WITHDRAWAL_NOT_FOUND", "Saque não encontrado")
	ErrTransicaoInvalida  = apperr.NovoRegraNegocio("INVALID_TRANSITION", "Transição de status inválida")
	ErrStatusInvalido     = apperr.NovoValidacao("INVALID_STATUS",
		"Status inválido. Use 'pending', 'processing', 'completed' ou 'rejected'.")
	ErrMotivoObrigatorio = apperr.NovoValidacao("REJECTION_REASON_REQUIRED", "Informe o motivo da rejeição")
)

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Saque{})
}
