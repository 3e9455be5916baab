package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/innexar/afiliados-api/internal/apperr"
)

// LimiteCorpo é o tamanho máximo aceito para corpos JSON.
const LimiteCorpo = 1 << 20

// JSON escreve v com o status informado.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Mensagem escreve {"message": msg}.
func Mensagem(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}

// Decodificar lê o corpo JSON da requisição em dst e valida as tags `validate`.
func Decodificar(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, LimiteCorpo))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.ErrJSONInvalido.ComMensagem("Corpo da requisição vazio")
		}
		return apperr.ErrJSONInvalido.Com(err)
	}
	return Validar(dst)
}
