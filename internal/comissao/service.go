package comissao

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/innexar/afiliados-api/internal/afiliado"
	"github.com/innexar/afiliados-api/internal/estrutura"
	"github.com/innexar/afiliados-api/internal/eventos"
	"github.com/innexar/afiliados-api/internal/link"
	"github.com/innexar/afiliados-api/internal/metrics"
	"github.com/innexar/afiliados-api/internal/produtos"
)

type Servico struct {
	Repo       *Repository
	Afiliados  *afiliado.Repository
	Estruturas *estrutura.Repository
	Links      *link.Repository
	Produtos   *produtos.Repository
	Eventos    eventos.Publicador
	agora      func() time.Time
}

func NewServico(repo *Repository, afiliados *afiliado.Repository, estruturas *estrutura.Repository,
	links *link.Repository, prods *produtos.Repository, pub eventos.Publicador) *Servico {
	return &Servico{
		Repo:       repo,
		Afiliados:  afiliados,
		Estruturas: estruturas,
		Links:      links,
		Produtos:   prods,
		Eventos:    pub,
		agora:      time.Now,
	}
}

// Registro são os dados de uma venda (ou renovação) a lançar no ledger.
type Registro struct {
	AfiliadoID    uuid.UUID
	LinkID        *uuid.UUID
	ProdutoID     *uuid.UUID
	DealValue     decimal.Decimal
	EstruturaID   *uuid.UUID
	NovoCliente   bool
	Recorrente    bool
	Notes         string
	PaymentPeriod string
}

// RegistrarComissao calcula e grava a comissão como pendente. A linha do
// afiliado fica travada durante a transação, o que serializa a contagem de
// novos clientes.
func (s *Servico) RegistrarComissao(ctx context.Context, reg Registro) (*Comissao, error) {
	return s.registrarComissao(ctx, reg, false)
}

func (s *Servico) registrarComissao(ctx context.Context, reg Registro, exigirAtivo bool) (*Comissao, error) {
	if reg.DealValue.IsNegative() {
		return nil, estrutura.ErrValorInvalido
	}

	var c *Comissao
	err := s.Repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := s.Afiliados.WithDB(tx).BloquearPorID(ctx, reg.AfiliadoID)
		if err != nil {
			return err
		}
		if a.Status == afiliado.StatusBloqueado || (exigirAtivo && a.Status != afiliado.StatusAtivo) {
			return afiliado.ErrContaInativa
		}
		c, err = s.montar(ctx, tx, a, reg)
		if err != nil {
			return err
		}
		if err := s.Repo.WithDB(tx).Criar(ctx, c); err != nil {
			return err
		}
		if c.LinkID != nil {
			return s.Links.WithDB(tx).IncrementarConversoes(ctx, *c.LinkID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ComissoesRegistradas.WithLabelValues(string(c.Tipo)).Inc()
	metrics.ComissoesValor.WithLabelValues(string(c.Tipo)).Add(c.Amount.InexactFloat64())
	slog.Info("comissão registrada",
		"comissao", c.ID, "afiliado", c.AfiliadoID, "tipo", c.Tipo, "amount", c.Amount.StringFixed(2))
	eventos.Enviar(ctx, s.Eventos, eventos.ComissaoRegistrada, c.AfiliadoID.String(), c)
	return c, nil
}

// montar resolve estrutura, produto e link e aplica o cálculo.
func (s *Servico) montar(ctx context.Context, tx *gorm.DB, a *afiliado.Afiliado, reg Registro) (*Comissao, error) {
	e, err := s.Estruturas.WithDB(tx).Resolver(ctx, reg.EstruturaID, a.EstruturaID)
	if err != nil {
		return nil, err
	}

	c := &Comissao{
		AfiliadoID:    a.ID,
		EstruturaID:   &e.ID,
		Tipo:          TipoVenda,
		DealValue:     estrutura.Arredondar(reg.DealValue),
		Currency:      e.Currency,
		Status:        StatusPendente,
		Notes:         strings.TrimSpace(reg.Notes),
		PaymentPeriod: reg.PaymentPeriod,
	}

	switch {
	case reg.LinkID != nil:
		l, err := s.Links.WithDB(tx).BuscarPorID(ctx, *reg.LinkID)
		if err != nil {
			return nil, err
		}
		if l.AfiliadoID != a.ID {
			return nil, ErrLinkDeOutroAfiliado
		}
		c.LinkID = &l.ID
		c.ProdutoID = &l.ProdutoID
		if l.Produto != nil {
			c.ProdutoNome = l.Produto.Nome
		}
	case reg.ProdutoID != nil:
		p, err := s.Produtos.WithDB(tx).BuscarPorID(ctx, *reg.ProdutoID)
		if err != nil {
			return nil, err
		}
		c.ProdutoID = &p.ID
		c.ProdutoNome = p.Nome
	}

	if reg.Recorrente {
		valor, err := estrutura.CalcularRecorrente(reg.DealValue, e)
		if err != nil {
			return nil, err
		}
		c.Tipo = TipoRecorrente
		c.CommissionRate = e.RecurringCommissionRate
		c.CommissionAmount = valor
		c.Amount = valor
		return c, nil
	}

	d, err := estrutura.Calcular(reg.DealValue, e)
	if err != nil {
		return nil, err
	}
	c.CommissionRate = d.CommissionRate
	c.CommissionAmount = d.CommissionAmount
	c.WeeklyBase = d.WeeklyBase
	c.PerformanceBonus = d.PerformanceBonus
	c.Amount = d.TotalAmount

	if reg.NovoCliente {
		var porProduto *uuid.UUID
		if e.NewClientScope == estrutura.EscopoProduto {
			porProduto = c.ProdutoID
		}
		anteriores, err := s.Repo.WithDB(tx).ContarNovosClientes(ctx, a.ID, porProduto)
		if err != nil {
			return nil, err
		}
		c.NovoCliente = true
		c.NewClientBonus = estrutura.BonusNovoCliente(anteriores, e)
		c.Amount = c.Amount.Add(c.NewClientBonus)
	}
	return c, nil
}

// Conversao chega das integrações de checkout com o código do link.
type Conversao struct {
	Code          string
	DealValue     decimal.Decimal
	NovoCliente   bool
	Recorrente    bool
	Notes         string
	PaymentPeriod string
}

// RegistrarConversao atribui a venda ao dono do link. Só afiliados ativos
// recebem comissão por conversão.
func (s *Servico) RegistrarConversao(ctx context.Context, cv Conversao) (*Comissao, error) {
	l, err := s.Links.BuscarPorCodigo(ctx, strings.TrimSpace(cv.Code))
	if err != nil {
		return nil, err
	}
	return s.registrarComissao(ctx, Registro{
		AfiliadoID:    l.AfiliadoID,
		LinkID:        &l.ID,
		DealValue:     cv.DealValue,
		NovoCliente:   cv.NovoCliente,
		Recorrente:    cv.Recorrente,
		Notes:         cv.Notes,
		PaymentPeriod: cv.PaymentPeriod,
	}, true)
}

// Transicionar aplica a tabela de transições com a comissão travada.
func (s *Servico) Transicionar(ctx context.Context, id uuid.UUID, novo Status) (*Comissao, error) {
	if !novo.Valido() {
		return nil, ErrStatusInvalido
	}

	var (
		c        *Comissao
		anterior Status
	)
	err := s.Repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithDB(tx)
		var err error
		c, err = repo.BloquearPorID(ctx, id)
		if err != nil {
			return err
		}
		anterior = c.Status
		if !anterior.PodeIrPara(novo) {
			return ErrTransicaoInvalida.ComMensagem(
				fmt.Sprintf("Não é possível mudar a comissão de '%s' para '%s'", anterior, novo))
		}
		c.carimbar(novo, s.agora())
		return repo.AtualizarStatus(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	metrics.ComissoesTransicoes.WithLabelValues(string(anterior), string(novo)).Inc()
	slog.Info("status da comissão alterado", "comissao", id, "de", anterior, "para", novo)
	eventos.Enviar(ctx, s.Eventos, eventos.ComissaoStatusAlterado, c.AfiliadoID.String(), map[string]any{
		"commissionId": c.ID,
		"affiliateId":  c.AfiliadoID,
		"from":         anterior,
		"to":           novo,
		"amount":       c.Amount,
	})
	return c, nil
}

// Saldos resume as comissões do afiliado por status.
type Saldos struct {
	Pending  decimal.Decimal `json:"pending"`
	Approved decimal.Decimal `json:"approved"`
	Paid     decimal.Decimal `json:"paid"`
	// Total soma todos os status exceto cancelada.
	Total decimal.Decimal `json:"total"`
}

func (s *Servico) Saldos(ctx context.Context, afiliadoID uuid.UUID) (Saldos, error) {
	somas, err := s.Repo.SomarPorStatus(ctx, afiliadoID)
	if err != nil {
		return Saldos{}, err
	}
	sd := Saldos{
		Pending:  somas[StatusPendente],
		Approved: somas[StatusAprovada],
		Paid:     somas[StatusPaga],
	}
	sd.Total = sd.Pending.Add(sd.Approved).Add(sd.Paid)
	return sd, nil
}

// Listar aceita filtro de status vazio (todas).
func (s *Servico) Listar(ctx context.Context, afiliadoID uuid.UUID, status string) ([]Comissao, error) {
	if status == "" {
		return s.Repo.Listar(ctx, afiliadoID, nil)
	}
	st := Status(status)
	if !st.Valido() {
		return nil, ErrStatusInvalido
	}
	return s.Repo.Listar(ctx, afiliadoID, &st)
}
