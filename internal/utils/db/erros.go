package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ViolacaoUnica informa se err veio de um índice único.
func ViolacaoUnica(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// drivers que não traduzem o erro
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") || strings.Contains(msg, "UNIQUE constraint failed")
}

// NaoEncontrado informa se err é gorm.ErrRecordNotFound.
func NaoEncontrado(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
