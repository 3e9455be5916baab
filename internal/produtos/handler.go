package produtos

import (
	"net/http"

	"github.com/innexar/afiliados-api/internal/apperr"
	"github.com/innexar/afiliados-api/internal/utils"
)

type Handler struct {
	Repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

// GET /products
func (h *Handler) ListProdutos(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Repo.Listar(r.Context(), true)
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, ps)
}

// GET /products/{id}
func (h *Handler) GetProduto(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParamUUID(r, "id")
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	p, err := h.Repo.BuscarPorID(r.Context(), id)
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, p)
}

// POST /admin/products
func (h *Handler) CreateProduto(w http.ResponseWriter, r *http.Request) {
	var dto ProdutoDTO
	if err := utils.Decodificar(r, &dto); err != nil {
		apperr.Escrever(w, err)
		return
	}
	if err := dto.validar(); err != nil {
		apperr.Escrever(w, err)
		return
	}

	p := Produto{Ativo: true}
	dto.aplicar(&p)
	if err := h.Repo.Criar(r.Context(), &p); err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, p)
}

// PUT /admin/products/{id}
func (h *Handler) UpdateProduto(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParamUUID(r, "id")
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	existing, err := h.Repo.BuscarPorID(r.Context(), id)
	if err != nil {
		apperr.Escrever(w, err)
		return
	}

	var dto ProdutoDTO
	if err := utils.Decodificar(r, &dto); err != nil {
		apperr.Escrever(w, err)
		return
	}
	if err := dto.validar(); err != nil {
		apperr.Escrever(w, err)
		return
	}

	// atualiza campos
	dto.aplicar(existing)
	if err := h.Repo.Atualizar(r.Context(), existing); err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, existing)
}
