package utils

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/innexar/afiliados-api/internal/apperr"
)

// ParamUUID lê a variável de rota nome como UUID.
func ParamUUID(r *http.Request, nome string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[nome])
	if err != nil {
		return uuid.Nil, apperr.ErrEntradaInvalida.
			ComMensagem("ID inválido").
			ComCampos(map[string]string{nome: "identificador inválido"})
	}
	return id, nil
}

// IPCliente devolve o IP de origem: o primeiro de X-Forwarded-For quando
// presente (o serviço roda atrás do balanceador), senão RemoteAddr.
func IPCliente(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip, _, _ := strings.Cut(xff, ",")
		if ip = strings.TrimSpace(ip); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
