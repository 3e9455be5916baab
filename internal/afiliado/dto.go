package afiliado

import (
	"time"

	"github.com/google/uuid"
)

type RegistroDTO struct {
	Name       string `json:"name" validate:"required,min=2,max=255"`
	Email      string `json:"email" validate:"required,email,max=255"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	Phone      string `json:"phone" validate:"omitempty,max=30"`
	CpfCnpj    string `json:"cpfCnpj" validate:"omitempty,max=20"`
	PixKey     string `json:"pixKey" validate:"omitempty,max=255"`
	PixKeyType string `json:"pixKeyType" validate:"omitempty,oneof=cpf cnpj email phone random"`
}

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResposta struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Affiliate   Resumo    `json:"affiliate"`
}

type Resumo struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Status       Status    `json:"status"`
	ReferralCode string    `json:"referralCode"`
}

func resumoDe(a *Afiliado) Resumo {
	return Resumo{ID: a.ID, Name: a.Nome, Email: a.Email, Status: a.Status, ReferralCode: a.ReferralCode}
}

// PerfilDTO atualiza só os campos enviados. E-mail, status e código de
// indicação não mudam por aqui.
type PerfilDTO struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=255"`
	Phone       *string `json:"phone" validate:"omitempty,max=30"`
	CpfCnpj     *string `json:"cpfCnpj" validate:"omitempty,max=20"`
	PixKey      *string `json:"pixKey" validate:"omitempty,max=255"`
	PixKeyType  *string `json:"pixKeyType" validate:"omitempty,oneof=cpf cnpj email phone random"`
	BankName    *string `json:"bankName" validate:"omitempty,max=120"`
	BankAgency  *string `json:"bankAgency" validate:"omitempty,max=20"`
	BankAccount *string `json:"bankAccount" validate:"omitempty,max=30"`
}

func (d *PerfilDTO) aplicar(a *Afiliado) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&a.Nome, d.Name)
	set(&a.Telefone, d.Phone)
	set(&a.CpfCnpj, d.CpfCnpj)
	set(&a.PixKey, d.PixKey)
	set(&a.PixKeyType, d.PixKeyType)
	set(&a.BankName, d.BankName)
	set(&a.BankAgency, d.BankAgency)
	set(&a.BankAccount, d.BankAccount)
}

type StatusDTO struct {
	Status Status `json:"status" validate:"required"`
}

type EstruturaDTO struct {
	StructureID *uuid.UUID `json:"structureId"`
}
