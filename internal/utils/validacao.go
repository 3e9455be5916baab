package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/innexar/afiliados-api/internal/apperr"
	"github.com/shopspring/decimal"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validador devolve a instância compartilhada do validator, usando o nome JSON
// dos campos nas mensagens.
func Validador() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			nome := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if nome == "-" {
				return ""
			}
			return nome
		})
		// decimal.Decimal é validado pelo valor numérico
		validate.RegisterCustomTypeFunc(func(v reflect.Value) any {
			if d, ok := v.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
	})
	return validate
}

// Validar aplica as regras `validate` de v e devolve um erro de validação com
// detalhes por campo.
func Validar(v any) error {
	err := Validador().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.ErrEntradaInvalida.Com(err)
	}
	campos := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		campos[fe.Field()] = mensagemCampo(fe)
	}
	return apperr.ErrEntradaInvalida.ComCampos(campos)
}

func mensagemCampo(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "campo obrigatório"
	case "email":
		return "e-mail inválido"
	case "url", "http_url":
		return "URL inválida"
	case "min":
		return fmt.Sprintf("mínimo de %s", fe.Param())
	case "max":
		return fmt.Sprintf("máximo de %s", fe.Param())
	case "gte":
		return fmt.Sprintf("deve ser maior ou igual a %s", fe.Param())
	case "gt":
		return fmt.Sprintf("deve ser maior que %s", fe.Param())
	case "lte":
		return fmt.Sprintf("deve ser menor ou igual a %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("valor deve ser um de: %s", fe.Param())
	case "uuid", "uuid4":
		return "identificador inválido"
	default:
		return "valor inválido"
	}
}
