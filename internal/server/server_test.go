package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innexar/afiliados-api/internal/afiliado"
	"github.com/innexar/afiliados-api/internal/auth"
	"github.com/innexar/afiliados-api/internal/codigo"
	"github.com/innexar/afiliados-api/internal/comissao"
	"github.com/innexar/afiliados-api/internal/config"
	"github.com/innexar/afiliados-api/internal/estrutura"
	"github.com/innexar/afiliados-api/internal/eventos"
	"github.com/innexar/afiliados-api/internal/link"
	"github.com/innexar/afiliados-api/internal/middleware"
	"github.com/innexar/afiliados-api/internal/produtos"
	"github.com/innexar/afiliados-api/internal/saque"
	"github.com/innexar/afiliados-api/internal/stats"
	"github.com/innexar/afiliados-api/internal/testutil"
)

const origem = "https://portal.exemplo.com"

type api struct {
	t       *testing.T
	handler http.Handler
	tokens  *auth.Gerenciador
	pub     *eventos.Memoria
}

func novaAPI(t *testing.T) *api {
	db := testutil.NovoDB(t, produtos.Migrate, estrutura.Migrate, afiliado.Migrate, link.Migrate, comissao.Migrate, saque.Migrate)
	tokens := auth.NovoGerenciador(config.Auth{
		JWTSecret: "segredo-de-teste-com-mais-de-32-caracteres",
		Issuer:    "afiliados-api",
		Audience:  "afiliados-portal",
		AccessTTL: time.Hour,
	})
	gerador, err := codigo.NovoGerador()
	require.NoError(t, err)
	pub := &eventos.Memoria{}

	prodRepo := produtos.NewRepository(db)
	estRepo := estrutura.NewRepository(db)
	afRepo := afiliado.NewRepository(db)
	linkRepo := link.NewRepository(db)
	comRepo := comissao.NewRepository(db)

	comSvc := comissao.NewServico(comRepo, afRepo, estRepo, linkRepo, prodRepo, pub)
	saqueSvc := saque.NewServico(saque.NewRepository(db), afRepo, comRepo, pub)

	h := NovoRouter(Handlers{
		Afiliados:  afiliado.NewHandler(afiliado.NewServico(afRepo, estRepo, gerador, tokens)),
		Estruturas: estrutura.NewHandler(estrutura.NewServico(estRepo)),
		Links:      link.NewHandler(link.NewServico(linkRepo, prodRepo, gerador, pub)),
		Comissoes:  comissao.NewHandler(comSvc),
		Saques:     saque.NewHandler(saqueSvc),
		Stats:      stats.NewHandler(stats.NewServico(linkRepo, comSvc, saqueSvc, nil, 0)),
		Produtos:   produtos.NewHandler(prodRepo),
	}, Opcoes{
		Tokens:         tokens,
		Limite:         middleware.NovoLimitePorIP(100, 100),
		AllowedOrigins: []string{origem},
	})
	return &api{t: t, handler: h, tokens: tokens, pub: pub}
}

func (a *api) token(role string) string {
	tok, _, err := a.tokens.GerarToken(uuid.New(), "", role)
	require.NoError(a.t, err)
	return tok
}

func (a *api) fazer(metodo, alvo, token string, corpo any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if corpo != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(corpo))
	}
	req := httptest.NewRequest(metodo, alvo, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodificar[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestFluxoCompleto(t *testing.T) {
	a := novaAPI(t)
	admin := a.token(auth.RoleAdmin)

	rec := a.fazer(http.MethodPost, "/commissions/structures", admin, map[string]any{
		"name":               "Padrão",
		"weekly_base":        0,
		"tiered_commissions": []map[string]any{{"min": 0, "max": nil, "rate": 0.1}},
		"new_client_bonus":   0,
		"is_default":         true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.fazer(http.MethodPost, "/admin/products", admin, map[string]any{
		"name": "CRM", "slug": "crm", "baseUrl": "https://crm.exemplo.com", "cookieDays": 7,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	produto := decodificar[produtos.Produto](t, rec)

	// cadastro fica pendente até o admin aprovar
	email := strings.ToLower(gofakeit.Email())
	senha := gofakeit.Password(true, true, true, false, false, 12)
	rec = a.fazer(http.MethodPost, "/auth/register", "", map[string]any{
		"name": gofakeit.Name(), "email": email, "password": senha, "pixKey": email, "pixKeyType": "email",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cadastro := decodificar[struct {
		Affiliate afiliado.Resumo `json:"affiliate"`
	}](t, rec)

	login := map[string]string{"email": email, "password": senha}
	rec = a.fazer(http.MethodPost, "/auth/login", "", login)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.fazer(http.MethodPatch, "/admin/affiliates/"+cadastro.Affiliate.ID.String()+"/status", admin,
		map[string]string{"status": "active"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.fazer(http.MethodPost, "/auth/login", "", login)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	afiliadoTok := decodificar[afiliado.LoginResposta](t, rec).AccessToken

	rec = a.fazer(http.MethodPost, "/affiliate/links", afiliadoTok, map[string]any{"productId": produto.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	lk := decodificar[link.Link](t, rec)

	rec = a.fazer(http.MethodGet, "/r/"+lk.Code, "", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, lk.TargetURL, rec.Header().Get("Location"))
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Equal(t, 7*24*60*60, rec.Result().Cookies()[0].MaxAge)

	// só admin ou integração registram conversões
	conversao := map[string]any{"code": lk.Code, "deal_value": 1000}
	rec = a.fazer(http.MethodPost, "/conversions", afiliadoTok, conversao)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.fazer(http.MethodPost, "/conversions", admin, conversao)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	com := decodificar[comissao.Comissao](t, rec)
	assert.True(t, com.Amount.Equal(decimal.NewFromInt(100)), com.Amount.String())

	rec = a.fazer(http.MethodPatch, "/admin/commissions/"+com.ID.String()+"/status", admin,
		map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.fazer(http.MethodGet, "/affiliate/stats", afiliadoTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	e := decodificar[stats.Estatisticas](t, rec)
	assert.EqualValues(t, 1, e.TotalVisits)
	assert.EqualValues(t, 1, e.TotalConversions)
	assert.True(t, e.ConversionRate.Equal(decimal.NewFromInt(100)))
	assert.True(t, e.AvailableBalance.Equal(decimal.NewFromInt(100)))

	rec = a.fazer(http.MethodPost, "/affiliate/withdrawals", afiliadoTok, map[string]any{"amount": 60})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = a.fazer(http.MethodPost, "/affiliate/withdrawals", afiliadoTok, map[string]any{"amount": 50})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INSUFFICIENT_BALANCE")

	assert.Equal(t, []string{
		eventos.LinkCriado,
		eventos.ComissaoRegistrada,
		eventos.ComissaoStatusAlterado,
		eventos.SaqueSolicitado,
	}, a.pub.Tipos())
}

func TestAutorizacao(t *testing.T) {
	a := novaAPI(t)
	afiliadoTok := a.token(auth.RoleAfiliado)

	casos := []struct {
		nome   string
		metodo string
		alvo   string
		token  string
		status int
	}{
		{"perfil sem token", http.MethodGet, "/affiliate/profile", "", http.StatusUnauthorized},
		{"token inválido", http.MethodGet, "/affiliate/links", "abc", http.StatusUnauthorized},
		{"admin fora da área do afiliado", http.MethodGet, "/affiliate/links", a.token(auth.RoleAdmin), http.StatusForbidden},
		{"afiliado na área admin", http.MethodGet, "/admin/withdrawals", afiliadoTok, http.StatusForbidden},
		{"afiliado criando estrutura", http.MethodPost, "/commissions/structures", afiliadoTok, http.StatusForbidden},
		{"afiliado lista estruturas", http.MethodGet, "/commissions/structures", afiliadoTok, http.StatusOK},
		{"vitrine exige token", http.MethodGet, "/products", "", http.StatusUnauthorized},
		{"link inexistente", http.MethodGet, "/r/naoexiste", "", http.StatusNotFound},
		{"métricas", http.MethodGet, "/metrics", "", http.StatusOK},
	}
	for _, c := range casos {
		t.Run(c.nome, func(t *testing.T) {
			rec := a.fazer(c.metodo, c.alvo, c.token, nil)
			assert.Equal(t, c.status, rec.Code, rec.Body.String())
		})
	}
}

func TestCORS(t *testing.T) {
	a := novaAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/affiliate/links", nil)
	req.Header.Set("Origin", origem)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	assert.Equal(t, origem, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/affiliate/links", nil)
	req.Header.Set("Origin", "https://outro.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
