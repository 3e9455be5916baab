// Package middleware reúne os middlewares HTTP comuns a todas as rotas.
package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/innexar/afiliados-api/internal/metrics"
)

const HeaderRequestID = "X-Request-ID"

type respostaGravada struct {
	http.ResponseWriter
	status int
}

func (r *respostaGravada) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Acesso registra cada requisição em log e no histograma de duração.
// Reaproveita o X-Request-ID recebido ou gera um novo.
func Acesso(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inicio := time.Now()
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)

		rw := &respostaGravada{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		rota := "desconhecida"
		if cr := mux.CurrentRoute(r); cr != nil {
			if tpl, err := cr.GetPathTemplate(); err == nil {
				rota = tpl
			}
		}
		dur := time.Since(inicio)
		metrics.DuracaoHTTP.WithLabelValues(r.Method, rota, strconv.Itoa(rw.status)).Observe(dur.Seconds())

		nivel := slog.LevelInfo
		if rw.status >= http.StatusInternalServerError {
			nivel = slog.LevelError
		}
		slog.Log(r.Context(), nivel, "requisição",
			"request_id", id,
			"metodo", r.Method,
			"rota", rota,
			"status", rw.status,
			"duracao_ms", dur.Milliseconds(),
		)
	})
}
