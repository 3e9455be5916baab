package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/innexar/afiliados-api/internal/utils"
)

// LimitePorIP aplica um token bucket por IP de origem.
type LimitePorIP struct {
	mu         sync.Mutex
	visitantes map[string]*rate.Limiter
	r          rate.Limit
	b          int
}

func NovoLimitePorIP(porSegundo float64, burst int) *LimitePorIP {
	return &LimitePorIP{
		visitantes: make(map[string]*rate.Limiter),
		r:          rate.Limit(porSegundo),
		b:          burst,
	}
}

func (l *LimitePorIP) limitador(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.visitantes[ip]
	if !ok {
		lim = rate.NewLimiter(l.r, l.b)
		l.visitantes[ip] = lim
	}
	return lim
}

// Limpar remove periodicamente os IPs com o balde cheio, até ctx terminar.
func (l *LimitePorIP) Limpar(ctx context.Context, intervalo time.Duration) {
	t := time.NewTicker(intervalo)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.mu.Lock()
			for ip, lim := range l.visitantes {
				if lim.Tokens() >= float64(l.b) {
					delete(l.visitantes, ip)
				}
			}
			l.mu.Unlock()
		}
	}
}

func (l *LimitePorIP) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.limitador(utils.IPCliente(r)).Allow() {
			w.Header().Set("Retry-After", "1")
			utils.JSON(w, http.StatusTooManyRequests, map[string]string{
				"error":   "RATE_LIMITED",
				"message": "Muitas requisições. Tente novamente em instantes.",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
