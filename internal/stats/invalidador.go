package stats

import (
	"context"
	"log/slog"

	"github.com/innexar/afiliados-api/internal/eventos"
	"github.com/innexar/afiliados-api/internal/metrics"
)

// Invalidador apaga o painel em cache do afiliado a cada evento publicado e
// repassa o evento ao próximo publicador. Os eventos saem depois do commit e
// a chave deles é o id do afiliado.
type Invalidador struct {
	Cache   Cache
	Proximo eventos.Publicador
}

func (i *Invalidador) Publicar(ctx context.Context, ev eventos.Evento) error {
	if i.Cache != nil && ev.Chave != "" {
		chave := prefixoChave + ev.Chave
		if err := i.Cache.Del(ctx, chave); err != nil {
			metrics.StatsCache.WithLabelValues("erro").Inc()
			slog.Warn("falha ao invalidar cache de estatísticas", "chave", chave, "evento", ev.Tipo, "erro", err)
		} else {
			metrics.StatsCache.WithLabelValues("invalidado").Inc()
		}
	}
	if i.Proximo == nil {
		return nil
	}
	return i.Proximo.Publicar(ctx, ev)
}

func (i *Invalidador) Close() error {
	if i.Proximo == nil {
		return nil
	}
	return i.Proximo.Close()
}
