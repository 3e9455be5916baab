package estrutura

import (
	"net/http"

	"github.com/innexar/afiliados-api/internal/apperr"
	"github.com/innexar/afiliados-api/internal/utils"
)

// Handler gerencia rotas de estruturas e cálculo de comissão
type Handler struct {
	Svc *Servico
}

func NewHandler(svc *Servico) *Handler {
	return &Handler{Svc: svc}
}

// POST /commissions/calculate
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var dto CalculoDTO
	if err := utils.Decodificar(r, &dto); err != nil {
		apperr.Escrever(w, err)
		return
	}
	res, err := h.Svc.Simular(r.Context(), dto)
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, res)
}

// GET /commissions/structures
func (h *Handler) ListStructures(w http.ResponseWriter, r *http.Request) {
	apenasAtivas := r.URL.Query().Get("active") != "false"
	list, err := h.Svc.Repo.Listar(r.Context(), apenasAtivas)
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, list)
}

// POST /commissions/structures
func (h *Handler) CreateStructure(w http.ResponseWriter, r *http.Request) {
	var dto EstruturaDTO
	if err := utils.Decodificar(r, &dto); err != nil {
		apperr.Escrever(w, err)
		return
	}
	e, err := h.Svc.Criar(r.Context(), dto)
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, e)
}

// PUT /commissions/structures/{id}
func (h *Handler) UpdateStructure(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParamUUID(r, "id")
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	var dto EstruturaDTO
	if err := utils.Decodificar(r, &dto); err != nil {
		apperr.Escrever(w, err)
		return
	}
	e, err := h.Svc.Atualizar(r.Context(), id, dto)
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, e)
}
