package saque

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
	"github.com/innexar/afiliados-api/internal/comissao"
	"github.com/innexar/afiliados-api/internal/eventos"
	"github.com/innexar/afiliados-api/internal/metrics"
)

type Servico struct {
	Repo      *Repository
	Afiliados *afiliado.Repository
	Comissoes *comissao.Repository
	Eventos   eventos.Publicador
	agora     func() time.Time
}

func NewServico(repo *Repository, afiliados *afiliado.Repository, comissoes *comissao.Repository, pub eventos.Publicador) *Servico {
	return &Servico{Repo: repo, Afiliados: afiliados, Comissoes: comissoes, Eventos: pub, agora: time.Now}
}

// SaldoDisponivel é o aprovado menos o que está reservado em saques em
// aberto. Dentro de SolicitarSaque roda na mesma transação do insert.
func (s *Servico) SaldoDisponivel(ctx context.Context, tx *gorm.DB, afiliadoID uuid.UUID) (decimal.Decimal, error) {
	aprovado, err := s.Comissoes.WithDB(tx).SomarAprovadas(ctx, afiliadoID)
	if err != nil {
		return decimal.Zero, err
	}
	reservado, err := s.Repo.WithDB(tx).SomarReservado(ctx, afiliadoID)
	if err != nil {
		return decimal.Zero, err
	}
	return aprovado.Sub(reservado), nil
}

// SolicitarSaque cria o pedido se houver chave PIX e saldo. A linha do
// afiliado fica travada até o commit, então dois pedidos simultâneos do mesmo
// afiliado nunca leem o mesmo saldo.
func (s *Servico) SolicitarSaque(ctx context.Context, afiliadoID uuid.UUID, amount decimal.Decimal) (*Saque, error) {
	if !amount.IsPositive() || amount.LessThan(MinimoSaque) {
		metrics.SaquesSolicitados.WithLabelValues("valor_invalido").Inc()
		return nil, ErrValorMinimo
	}
	if !amount.Equal(amount.Round(2)) {
		return nil, ErrValorMinimo.ComMensagem("O valor do saque deve ter no máximo duas casas decimais")
	}

	var sq *Saque
	err := s.Repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := s.Afiliados.WithDB(tx).BloquearPorID(ctx, afiliadoID)
		if err != nil {
			return err
		}
		if strings.TrimSpace(a.PixKey) == "" {
			return ErrSemChavePix
		}
		disponivel, err := s.SaldoDisponivel(ctx, tx, afiliadoID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(disponivel) {
			return ErrSaldoInsuficiente
		}
		sq = &Saque{
			AfiliadoID: afiliadoID,
			Amount:     amount,
			Method:     MetodoPix,
			PixKey:     a.PixKey,
			PixKeyType: a.PixKeyType,
			Status:     StatusPendente,
		}
		return s.Repo.WithDB(tx).Criar(ctx, sq)
	})
	if err != nil {
		metrics.SaquesSolicitados.WithLabelValues("recusado").Inc()
		return nil, err
	}

	metrics.SaquesSolicitados.WithLabelValues("aceito").Inc()
	slog.Info("saque solicitado", "saque", sq.ID, "afiliado", afiliadoID, "amount", amount.StringFixed(2))
	eventos.Enviar(ctx, s.Eventos, eventos.SaqueSolicitado, afiliadoID.String(), sq)
	return sq, nil
}

// Transicionar move o saque na máquina de estados. Rejeição exige motivo e
// devolve o valor ao saldo disponível.
func (s *Servico) Transicionar(ctx context.Context, id uuid.UUID, novo Status, motivo string) (*Saque, error) {
	if !novo.Valido() {
		return nil, ErrStatusInvalido
	}
	motivo = strings.TrimSpace(motivo)
	if novo == StatusRejeitado && motivo == "" {
		return nil, ErrMotivoObrigatorio
	}

	var (
		sq       *Saque
		anterior Status
	)
	err := s.Repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithDB(tx)
		var err error
		sq, err = repo.BloquearPorID(ctx, id)
		if err != nil {
			return err
		}
		anterior = sq.Status
		if !anterior.PodeIrPara(novo) {
			return ErrTransicaoInvalida.ComMensagem(
				fmt.Sprintf("Não é possível mudar o saque de '%s' para '%s'", anterior, novo))
		}
		sq.carimbar(novo, motivo, s.agora())
		return repo.AtualizarStatus(ctx, sq)
	})
	if err != nil {
		return nil, err
	}

	metrics.SaquesTransicoes.WithLabelValues(string(anterior), string(novo)).Inc()
	slog.Info("status do saque alterado", "saque", id, "de", anterior, "para", novo)
	eventos.Enviar(ctx, s.Eventos, eventos.SaqueStatusAlterado, sq.AfiliadoID.String(), map[string]any{
		"withdrawalId": sq.ID,
		"affiliateId":  sq.AfiliadoID,
		"from":         anterior,
		"to":           novo,
		"amount":       sq.Amount,
		"reason":       sq.RejectionReason,
	})
	return sq, nil
}

func (s *Servico) Listar(ctx context.Context, afiliadoID uuid.UUID) ([]Saque, error) {
	return s.Repo.ListarPorAfiliado(ctx, afiliadoID)
}
