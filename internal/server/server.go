// Package server monta o roteador HTTP da API.
package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/innexar/afiliados-api/internal/afiliado"
	"github.com/innexar/afiliados-api/internal/auth"
	"github.com/innexar/afiliados-api/internal/comissao"
	"github.com/innexar/afiliados-api/internal/estrutura"
	"github.com/innexar/afiliados-api/internal/link"
	"github.com/innexar/afiliados-api/internal/middleware"
	"github.com/innexar/afiliados-api/internal/produtos"
	"github.com/innexar/afiliados-api/internal/saque"
	"github.com/innexar/afiliados-api/internal/stats"
)

// Handlers reúne os handlers de cada pacote.
type Handlers struct {
	Afiliados  *afiliado.Handler
	Estruturas *estrutura.Handler
	Links      *link.Handler
	Comissoes  *comissao.Handler
	Saques     *saque.Handler
	Stats      *stats.Handler
	Produtos   *produtos.Handler
}

type Opcoes struct {
	Tokens         *auth.Gerenciador
	Limite         *middleware.LimitePorIP
	AllowedOrigins []string
}

// NovoRouter registra todas as rotas. Rotas públicas ficam na raiz; o resto
// passa pelo middleware de autenticação.
func NovoRouter(h Handlers, op Opcoes) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Acesso)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	// Rotas públicas
	r.HandleFunc("/auth/register", h.Afiliados.Register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.Afiliados.Login).Methods(http.MethodPost)

	visita := http.Handler(http.HandlerFunc(h.Links.Redirect))
	if op.Limite != nil {
		visita = op.Limite.Middleware(visita)
	}
	r.Handle("/r/{code}", visita).Methods(http.MethodGet)

	// Qualquer usuário autenticado
	autenticado := r.NewRoute().Subrouter()
	autenticado.Use(op.Tokens.Middleware)
	autenticado.HandleFunc("/products", h.Produtos.ListProdutos).Methods(http.MethodGet)
	autenticado.HandleFunc("/products/{id}", h.Produtos.GetProduto).Methods(http.MethodGet)
	autenticado.HandleFunc("/commissions/calculate", h.Estruturas.Calculate).Methods(http.MethodPost)
	autenticado.HandleFunc("/commissions/structures", h.Estruturas.ListStructures).Methods(http.MethodGet)

	// Rotas do afiliado
	af := r.PathPrefix("/affiliate").Subrouter()
	af.Use(op.Tokens.Middleware, auth.RequireAfiliado)
	af.HandleFunc("/profile", h.Afiliados.GetProfile).Methods(http.MethodGet)
	af.HandleFunc("/profile", h.Afiliados.UpdateProfile).Methods(http.MethodPut)
	af.HandleFunc("/links", h.Links.ListLinks).Methods(http.MethodGet)
	af.HandleFunc("/links", h.Links.CreateLink).Methods(http.MethodPost)
	af.HandleFunc("/links/{id}", h.Links.DeleteLink).Methods(http.MethodDelete)
	af.HandleFunc("/commissions", h.Comissoes.ListCommissions).Methods(http.MethodGet)
	af.HandleFunc("/withdrawals", h.Saques.ListWithdrawals).Methods(http.MethodGet)
	af.HandleFunc("/withdrawals", h.Saques.RequestWithdrawal).Methods(http.MethodPost)
	af.HandleFunc("/stats", h.Stats.GetStats).Methods(http.MethodGet)

	// Rotas administrativas e de integração
	adm := r.NewRoute().Subrouter()
	adm.Use(op.Tokens.Middleware, auth.RequireAdmin)
	adm.HandleFunc("/commissions/structures", h.Estruturas.CreateStructure).Methods(http.MethodPost)
	adm.HandleFunc("/commissions/structures/{id}", h.Estruturas.UpdateStructure).Methods(http.MethodPut)
	adm.HandleFunc("/conversions", h.Comissoes.RecordConversion).Methods(http.MethodPost)
	adm.HandleFunc("/admin/affiliates", h.Afiliados.ListAffiliates).Methods(http.MethodGet)
	adm.HandleFunc("/admin/affiliates/{id}/status", h.Afiliados.UpdateStatus).Methods(http.MethodPatch)
	adm.HandleFunc("/admin/affiliates/{id}/structure", h.Afiliados.UpdateStructure).Methods(http.MethodPatch)
	adm.HandleFunc("/admin/commissions", h.Comissoes.CreateCommission).Methods(http.MethodPost)
	adm.HandleFunc("/admin/commissions/{id}/status", h.Comissoes.UpdateStatus).Methods(http.MethodPatch)
	adm.HandleFunc("/admin/withdrawals", h.Saques.ListAll).Methods(http.MethodGet)
	adm.HandleFunc("/admin/withdrawals/{id}/status", h.Saques.UpdateStatus).Methods(http.MethodPatch)
	adm.HandleFunc("/admin/products", h.Produtos.CreateProduto).Methods(http.MethodPost)
	adm.HandleFunc("/admin/products/{id}", h.Produtos.UpdateProduto).Methods(http.MethodPut)

	c := cors.New(cors.Options{
		AllowedOrigins:   op.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.HeaderRequestID},
		ExposedHeaders:   []string{middleware.HeaderRequestID},
		AllowCredentials: true,
	})
	return c.Handler(r)
}
