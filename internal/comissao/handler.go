package comissao

import (
	"net/http"

	"github.com/shopspring/decimal"

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

func exigirValor(v *decimal.Decimal) error {
	if v == nil {
		return apperr.ErrEntradaInvalida.ComCampos(map[string]string{"deal_value": "campo obrigatório"})
	}
	return nil
}

// GET /affiliate/commissions?status=
func (h *Handler) ListCommissions(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.AfiliadoID(r.Context())
	if !ok {
		apperr.Escrever(w, apperr.ErrNaoAutenticado)
		return
	}
	list, err := h.Svc.Listar(r.Context(), id, r.URL.Query().Get("status"))
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, list)
}

// PATCH /admin/commissions/{id}/status
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
	c, err := h.Svc.Transicionar(r.Context(), id, dto.Status)
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, c)
}

// POST /conversions
func (h *Handler) RecordConversion(w http.ResponseWriter, r *http.Request) {
	var dto ConversaoDTO
	if err := utils.Decodificar(r, &dto); err != nil {
		apperr.Escrever(w, err)
		return
	}
	if err := exigirValor(dto.DealValue); err != nil {
		apperr.Escrever(w, err)
		return
	}
	c, err := h.Svc.RegistrarConversao(r.Context(), Conversao{
		Code:          dto.Code,
		DealValue:     *dto.DealValue,
		NovoCliente:   dto.NewClient,
		Recorrente:    dto.Recurring,
		Notes:         dto.Notes,
		PaymentPeriod: dto.PaymentPeriod,
	})
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, c)
}

// POST /admin/commissions
func (h *Handler) CreateCommission(w http.ResponseWriter, r *http.Request) {
	var dto LancamentoDTO
	if err := utils.Decodificar(r, &dto); err != nil {
		apperr.Escrever(w, err)
		return
	}
	if err := exigirValor(dto.DealValue); err != nil {
		apperr.Escrever(w, err)
		return
	}
	c, err := h.Svc.RegistrarComissao(r.Context(), Registro{
		AfiliadoID:    dto.AffiliateID,
		LinkID:        dto.LinkID,
		ProdutoID:     dto.ProductID,
		DealValue:     *dto.DealValue,
		EstruturaID:   dto.StructureID,
		NovoCliente:   dto.NewClient,
		Recorrente:    dto.Recurring,
		Notes:         dto.Notes,
		PaymentPeriod: dto.PaymentPeriod,
	})
	if err != nil {
		apperr.Escrever(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, c)
}
