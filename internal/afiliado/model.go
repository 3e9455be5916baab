package afiliado

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/innexar/afiliados-api/internal/apperr"
	"github.com/innexar/afiliados-api/internal/models"
)

type Status string

const (
	StatusPendente  Status = "pending"
	StatusAtivo     Status = "active"
	StatusBloqueado Status = "blocked"
)

func (s Status) Valido() bool {
	switch s {
	case StatusPendente, StatusAtivo, StatusBloqueado:
		return true
	}
	return false
}

// Afiliado é o parceiro que divulga produtos. Nunca é apagado: as comissões
// históricas continuam apontando para ele.
type Afiliado struct {
	models.Base
	Nome            string     `gorm:"size:255;not null" json:"name"`
	Email           string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	SenhaHash       string     `gorm:"size:255;not null" json:"-"`
	Telefone        string     `gorm:"size:30" json:"phone"`
	CpfCnpj         string     `gorm:"size:20" json:"cpfCnpj"`
	PixKey          string     `gorm:"size:255" json:"pixKey"`
	PixKeyType      string     `gorm:"size:20" json:"pixKeyType"`
	BankName        string     `gorm:"size:120" json:"bankName"`
	BankAgency      string     `gorm:"size:20" json:"bankAgency"`
	BankAccount     string     `gorm:"size:30" json:"bankAccount"`
	ReferralCode    string     `gorm:"size:20;not null;uniqueIndex" json:"referralCode"`
	Status          Status     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	EstruturaID     *uuid.UUID `gorm:"type:uuid" json:"structureId,omitempty"`
	AprovadoEm      *time.Time `json:"approvedAt,omitempty"`
	AceitouTermosEm *time.Time `json:"acceptedTermsAt,omitempty"`
}

func (Afiliado) TableName() string { return "afiliados" }

var (
	ErrAfiliadoNaoEncontrado = apperr.NovoNaoEncontrado("AFFILIATE_NOT_FOUND", "Afiliado não encontrado")
	ErrEmailEmUso            = apperr.NovoConflito("EMAIL_TAKEN", "Este e-mail já está cadastrado")
	ErrCredenciais           = apperr.Novo(apperr.NaoAutorizado, "INVALID_CREDENTIALS", "Credenciais inválidas")
	ErrContaBloqueada        = apperr.Novo(apperr.Proibido, "ACCOUNT_BLOCKED",
		"Sua conta foi bloqueada. Entre em contato com o suporte.")
	ErrContaPendente = apperr.Novo(apperr.Proibido, "ACCOUNT_PENDING",
		"Sua conta está aguardando aprovação. Você receberá um e-mail quando for aprovada.")
	ErrContaInativa   = apperr.NovoRegraNegocio("AFFILIATE_INACTIVE", "Afiliado não está ativo")
	ErrStatusInvalido = apperr.NovoValidacao("INVALID_STATUS", "Status inválido. Use 'pending', 'active' ou 'blocked'.")
)

// Migrate cria a tabela no banco de dados.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Afiliado{})
}
