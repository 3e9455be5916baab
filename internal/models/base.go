// Package models reúne os campos comuns às entidades persistidas.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base é embutida nas entidades: ID UUID gerado na inserção e timestamps.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate gera o ID quando ainda não foi definido.
func (b *Base) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
