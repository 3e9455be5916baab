// Package stats monta o painel de desempenho do afiliado.
package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/innexar/afiliados-api/internal/comissao"
	"github.com/innexar/afiliados-api/internal/estrutura"
	"github.com/innexar/afiliados-api/internal/link"
	"github.com/innexar/afiliados-api/internal/metrics"
	"github.com/innexar/afiliados-api/internal/saque"
)

const prefixoChave = "afiliados:stats:"

type Estatisticas struct {
	TotalVisits         int64           `json:"totalVisits"`
	TotalConversions    int64           `json:"totalConversions"`
	ConversionRate      decimal.Decimal `json:"conversionRate"`
	TotalCommissions    decimal.Decimal `json:"totalCommissions"`
	PendingCommissions  decimal.Decimal `json:"pendingCommissions"`
	ApprovedCommissions decimal.Decimal `json:"approvedCommissions"`
	PaidCommissions     decimal.Decimal `json:"paidCommissions"`
	// AvailableBalance é o aprovado ainda não reservado por saques.
	AvailableBalance decimal.Decimal `json:"availableBalance"`
}

type Servico struct {
	Links     *link.Repository
	Comissoes *comissao.Servico
	Saques    *saque.Servico
	// Cache é opcional; nil desliga.
	Cache Cache
	TTL   time.Duration
}

func NewServico(links *link.Repository, comissoes *comissao.Servico, saques *saque.Servico, cache Cache, ttl time.Duration) *Servico {
	return &Servico{Links: links, Comissoes: comissoes, Saques: saques, Cache: cache, TTL: ttl}
}

// TaxaConversao é conversões/visitas*100 com duas casas; zero sem visitas.
func TaxaConversao(conversoes, visitas int64) decimal.Decimal {
	if visitas <= 0 {
		return decimal.Zero
	}
	return estrutura.Arredondar(decimal.NewFromInt(conversoes).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(visitas)))
}

// Obter devolve as estatísticas, do cache quando houver.
func (s *Servico) Obter(ctx context.Context, afiliadoID uuid.UUID) (*Estatisticas, error) {
	chave := prefixoChave + afiliadoID.String()
	if e, ok := s.lerCache(ctx, chave); ok {
		return e, nil
	}

	e, err := s.calcular(ctx, afiliadoID)
	if err != nil {
		return nil, err
	}
	s.gravarCache(ctx, chave, e)
	return e, nil
}

func (s *Servico) calcular(ctx context.Context, afiliadoID uuid.UUID) (*Estatisticas, error) {
	visitas, err := s.Links.ContarVisitas(ctx, afiliadoID)
	if err != nil {
		return nil, err
	}
	conversoes, err := s.Comissoes.Repo.Contar(ctx, afiliadoID)
	if err != nil {
		return nil, err
	}
	saldos, err := s.Comissoes.Saldos(ctx, afiliadoID)
	if err != nil {
		return nil, err
	}
	disponivel, err := s.Saques.SaldoDisponivel(ctx, nil, afiliadoID)
	if err != nil {
		return nil, err
	}
	return &Estatisticas{
		TotalVisits:         visitas,
		TotalConversions:    conversoes,
		ConversionRate:      TaxaConversao(conversoes, visitas),
		TotalCommissions:    saldos.Total,
		PendingCommissions:  saldos.Pending,
		ApprovedCommissions: saldos.Approved,
		PaidCommissions:     saldos.Paid,
		AvailableBalance:    disponivel,
	}, nil
}

func (s *Servico) lerCache(ctx context.Context, chave string) (*Estatisticas, bool) {
	if s.Cache == nil {
		return nil, false
	}
	b, ok, err := s.Cache.Get(ctx, chave)
	if err != nil {
		metrics.StatsCache.WithLabelValues("erro").Inc()
		slog.Warn("falha ao ler cache de estatísticas", "chave", chave, "erro", err)
		return nil, false
	}
	if !ok {
		metrics.StatsCache.WithLabelValues("miss").Inc()
		return nil, false
	}
	var e Estatisticas
	if err := json.Unmarshal(b, &e); err != nil {
		metrics.StatsCache.WithLabelValues("erro").Inc()
		return nil, false
	}
	metrics.StatsCache.WithLabelValues("hit").Inc()
	return &e, true
}

func (s *Servico) gravarCache(ctx context.Context, chave string, e *Estatisticas) {
	if s.Cache == nil || s.TTL <= 0 {
		return
	}
	b, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, chave, b, s.TTL); err != nil {
		metrics.StatsCache.WithLabelValues("erro").Inc()
		slog.Warn("falha ao gravar cache de estatísticas", "chave", chave, "erro", err)
	}
}
