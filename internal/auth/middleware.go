package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/innexar/afiliados-api/internal/apperr"
)

type ctxKey string

const (
	CtxAfiliadoID ctxKey = "afiliadoID"
	CtxRole       ctxKey = "role"
)

// Middleware exige um Bearer token válido e coloca o ID e o papel no contexto.
func (g *Gerenciador) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		h := r.Header.Get("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			apperr.Escrever(w, apperr.ErrNaoAutenticado.ComMensagem("Token ausente"))
			return
		}
		claims, err := g.Validar(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			apperr.Escrever(w, apperr.ErrNaoAutenticado.ComMensagem("Token inválido"))
			return
		}
		id := uuid.MustParse(claims.Subject)
		next.ServeHTTP(w, r.WithContext(ComIdentidade(r.Context(), id, claims.Role)))
	})
}

// ComIdentidade devolve um contexto com o ID e o papel do usuário.
func ComIdentidade(ctx context.Context, id uuid.UUID, role string) context.Context {
	ctx = context.WithValue(ctx, CtxAfiliadoID, id)
	return context.WithValue(ctx, CtxRole, role)
}

// AfiliadoID lê o ID autenticado do contexto.
func AfiliadoID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(CtxAfiliadoID).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func EhAdmin(ctx context.Context) bool {
	role, _ := ctx.Value(CtxRole).(string)
	return role == RoleAdmin
}

// RequireAdmin bloqueia quem não tem papel admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !EhAdmin(r.Context()) {
			apperr.Escrever(w, apperr.ErrSemPermissao)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAfiliado bloqueia tokens que não sejam de afiliado.
func RequireAfiliado(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, _ := r.Context().Value(CtxRole).(string)
		if role != RoleAfiliado {
			apperr.Escrever(w, apperr.ErrSemPermissao.ComMensagem("Acesso restrito a afiliados"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
