package saque

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

// GET /affiliate/withdrawals
func (h *Handler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.AfiliadoID(r.Context())
	if !ok {
		apperr.Escrever(w, apperr.ErrNaoAutenticado)
		return
	}
	list, err := h.Svc.Listar(r.Context(), id)
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, list)
}

// POST /affiliate/withdrawals
func (h *Handler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.AfiliadoID(r.Context())
	if !ok {
		apperr.Escrever(w, apperr.ErrNaoAutenticado)
		return
	}
	var dto SolicitacaoDTO
	if err := utils.Decodificar(r, &dto); err != nil {
		apperr.Escrever(w, err)
		return
	}
	if dto.Amount == nil {
		apperr.Escrever(w, ErrValorMinimo.ComCampos(map[string]string{"amount": "campo obrigatório"}))
		return
	}
	sq, err := h.Svc.SolicitarSaque(r.Context(), id, *dto.Amount)
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, sq)
}

// GET /admin/withdrawals?status=
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	status := Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valido() {
		apperr.Escrever(w, ErrStatusInvalido)
		return
	}
	list, err := h.Svc.Repo.ListarPorStatus(r.Context(), status)
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, list)
}

// PATCH /admin/withdrawals/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParamUUID(r, "id")
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	var dto StatusDTO
	if err := utils.Decodificar(r, &dto); err != nil {
		apperr.Escrever(w, err)
		return
	}
	sq, err := h.Svc.Transicionar(r.Context(), id, dto.Status, dto.Reason)
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, sq)
}
