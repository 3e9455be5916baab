package link

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/innexar/afiliados-api/internal/apperr"
	"github.com/innexar/afiliados-api/internal/auth"
	"github.com/innexar/afiliados-api/internal/utils"
)

// CookieReferencia guarda o código do link visitado no navegador do cliente.
const CookieReferencia = "afiliado_ref"

type Handler struct {
	Svc *Servico
}

func NewHandler(svc *Servico) *Handler {
	return &Handler{Svc: svc}
}

// GET /affiliate/links
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.AfiliadoID(r.Context())
	if !ok {
		apperr.Escrever(w, apperr.ErrNaoAutenticado)
		return
	}
	list, err := h.Svc.ListarLinks(r.Context(), id)
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, list)
}

// POST /affiliate/links
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.AfiliadoID(r.Context())
	if !ok {
		apperr.Escrever(w, apperr.ErrNaoAutenticado)
		return
	}
	var dto CriarLinkDTO
	if err := utils.Decodificar(r, &dto); err != nil {
		apperr.Escrever(w, err)
		return
	}
	l, err := h.Svc.CriarLink(r.Context(), id, dto.ProductID, dto.CustomSlug)
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, l)
}

// DELETE /affiliate/links/{id}
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	afiliadoID, ok := auth.AfiliadoID(r.Context())
	if !ok {
		apperr.Escrever(w, apperr.ErrNaoAutenticado)
		return
	}
	linkID, err := utils.ParamUUID(r, "id")
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	if err := h.Svc.RemoverLink(r.Context(), afiliadoID, linkID); err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.Mensagem(w, http.StatusOK, "Link removido com sucesso")
}

// GET /r/{code} (público): registra a visita e redireciona para o produto.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	l, err := h.Svc.RegistrarVisita(r.Context(), code, Acesso{
		IP:        utils.IPCliente(r),
		UserAgent: r.UserAgent(),
		Referer:   r.Referer(),
	})
	if err != nil {
		apperr.Escrever(w, err)
		return
	}

	dias := 30
	if l.Produto != nil && l.Produto.CookieDays > 0 {
		dias = l.Produto.CookieDays
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieReferencia,
		Value:    l.Code,
		Path:     "/",
		MaxAge:   dias * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, l.TargetURL, http.StatusFound)
}
