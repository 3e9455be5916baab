package afiliado

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

// POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegistroDTO
	if err := utils.Decodificar(r, &dto); err != nil {
		apperr.Escrever(w, err)
		return
	}
	a, err := h.Svc.Registrar(r.Context(), dto)
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, map[string]any{
		"message":   "Cadastro realizado com sucesso! Sua conta está aguardando aprovação.",
		"affiliate": resumoDe(a),
	})
}

// POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := utils.Decodificar(r, &dto); err != nil {
		apperr.Escrever(w, err)
		return
	}
	res, err := h.Svc.Login(r.Context(), dto)
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, res)
}

// GET /affiliate/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.AfiliadoID(r.Context())
	if !ok {
		apperr.Escrever(w, apperr.ErrNaoAutenticado)
		return
	}
	a, err := h.Svc.Perfil(r.Context(), id)
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, a)
}

// PUT /affiliate/profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.AfiliadoID(r.Context())
	if !ok {
		apperr.Escrever(w, apperr.ErrNaoAutenticado)
		return
	}
	var dto PerfilDTO
	if err := utils.Decodificar(r, &dto); err != nil {
		apperr.Escrever(w, err)
		return
	}
	a, err := h.Svc.AtualizarPerfil(r.Context(), id, dto)
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, a)
}

// GET /admin/affiliates?status=
func (h *Handler) ListAffiliates(w http.ResponseWriter, r *http.Request) {
	status := Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valido() {
		apperr.Escrever(w, ErrStatusInvalido)
		return
	}
	list, err := h.Svc.Repo.Listar(r.Context(), status)
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, list)
}

// PATCH /admin/affiliates/{id}/status
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
	a, err := h.Svc.AlterarStatus(r.Context(), id, dto.Status)
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, a)
}

// PATCH /admin/affiliates/{id}/structure
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
	a, err := h.Svc.DefinirEstrutura(r.Context(), id, dto.StructureID)
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, a)
}
