package stats

import (
	"net/http"

	"github.com/innexar/afiliados-api/internal/apperr"
	"github.com/innexar/afiliados-api/internal/auth"
	"github.com/innexar/afiliados-api/internal/utils"
)

type Handler struct {
	Svc *Servico
}

func NewHandler(svc *Servico) *Handler {
	return &Handler{Svc: svc}
}

// GET /affiliate/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.AfiliadoID(r.Context())
	if !ok {
		apperr.Escrever(w, apperr.ErrNaoAutenticado)
		return
	}
	e, err := h.Svc.Obter(r.Context(), id)
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, e)
}
