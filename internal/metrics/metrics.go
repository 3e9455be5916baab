package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "afiliados"

var (
	// Colisões de código detectadas na inserção, por tipo (link, referral)
	ColisoesCodigo = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "codigo_colisoes_total",
		Help:      "Colisões de código detectadas na inserção.",
	}, []string{"tipo"})

	LinksCriados = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "links_criados_total",
		Help:      "Links de afiliado criados.",
	})

	Visitas = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "visitas_total",
		Help:      "Visitas rastreadas em links de afiliado.",
	})

	ComissoesRegistradas = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "comissoes_registradas_total",
		Help:      "Comissões registradas, por tipo (sale, recurring).",
	}, []string{"tipo"})

	ComissoesValor = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "comissoes_valor_total",
		Help:      "Soma dos valores de comissão registrados.",
	}, []string{"tipo"})

	ComissoesTransicoes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "comissoes_transicoes_total",
		Help:      "Transições de status de comissão.",
	}, []string{"de", "para"})

	SaquesSolicitados = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "saques_solicitados_total",
		Help:      "Pedidos de saque, por resultado.",
	}, []string{"resultado"})

	SaquesTransicoes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "saques_transicoes_total",
		Help:      "Transições de status de saque.",
	}, []string{"de", "para"})

	StatsCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stats_cache_total",
		Help:      "Operações no cache de estatísticas, por resultado (hit, miss, invalidado, erro).",
	}, []string{"resultado"})

	DuracaoHTTP = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_duracao_segundos",
		Help:      "Duração das requisições HTTP.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"metodo", "rota", "status"})
)
