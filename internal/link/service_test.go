package link

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innexar/afiliados-api/internal/codigo"
	"github.com/innexar/afiliados-api/internal/eventos"
	"github.com/innexar/afiliados-api/internal/produtos"
	"github.com/innexar/afiliados-api/internal/testutil"
)

type ambiente struct {
	svc *Servico
	pub *eventos.Memoria
}

func novoAmbiente(t *testing.T) *ambiente {
	db := testutil.NovoDB(t, produtos.Migrate, Migrate)
	g, err := codigo.NovoGerador()
	require.NoError(t, err)
	pub := &eventos.Memoria{}
	return &ambiente{
		svc: NewServico(NewRepository(db), produtos.NewRepository(db), g, pub),
		pub: pub,
	}
}

func (a *ambiente) produto(t *testing.T, slug string, ativo bool) *produtos.Produto {
	p := &produtos.Produto{
		Nome:           "Produto " + slug,
		Slug:           slug,
		CommissionRate: decimal.RequireFromString("0.2"),
		BaseURL:        "https://app.exemplo.com/" + slug,
		CheckoutURL:    "https://pay.exemplo.com/" + slug + "?plano=pro",
		CookieDays:     45,
		Ativo:          ativo,
	}
	require.NoError(t, a.svc.Produtos.Criar(context.Background(), p))
	return p
}

func ptr(s string) *string { return &s }

// sequencia devolve os códigos informados, na ordem.
func sequencia(codes ...string) func() string {
	i := 0
	return func() string {
		c := codes[i%len(codes)]
		i++
		return c
	}
}

func TestCriarLink(t *testing.T) {
	ctx := context.Background()

	t.Run("gera código e url de destino", func(t *testing.T) {
		a := novoAmbiente(t)
		p := a.produto(t, "crm", true)
		afiliado := uuid.New()

		l, err := a.svc.CriarLink(ctx, afiliado, p.ID, nil)
		require.NoError(t, err)

		assert.Len(t, l.Code, codigo.TamanhoLink)
		assert.Regexp(t, `^[A-Z0-9]+$`, l.Code)
		assert.Equal(t, "https://pay.exemplo.com/crm?plano=pro&ref="+l.Code, l.TargetURL)
		require.NotNil(t, l.Produto)
		assert.Equal(t, "crm", l.Produto.Slug)
		assert.Equal(t, []string{eventos.LinkCriado}, a.pub.Tipos())
	})

	t.Run("segundo link para o mesmo produto é conflito e não grava", func(t *testing.T) {
		a := novoAmbiente(t)
		p := a.produto(t, "erp", true)
		afiliado := uuid.New()

		_, err := a.svc.CriarLink(ctx, afiliado, p.ID, nil)
		require.NoError(t, err)
		_, err = a.svc.CriarLink(ctx, afiliado, p.ID, nil)
		assert.ErrorIs(t, err, ErrLinkDuplicado)

		list, err := a.svc.ListarLinks(ctx, afiliado)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("criações simultâneas gravam um único link", func(t *testing.T) {
		a := novoAmbiente(t)
		p := a.produto(t, "crm", true)
		afiliado := uuid.New()

		const n = 5
		var (
			wg         sync.WaitGroup
			mu         sync.Mutex
			aceitos    int
			duplicados int
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := a.svc.CriarLink(ctx, afiliado, p.ID, nil)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					aceitos++
				case errors.Is(err, ErrLinkDuplicado):
					duplicados++
				default:
					t.Errorf("erro inesperado: %v", err)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, aceitos)
		assert.Equal(t, n-1, duplicados)
		list, err := a.svc.ListarLinks(ctx, afiliado)
		require.NoError(t, err)
		assert.Len(t, list, 1)
		assert.Equal(t, []string{eventos.LinkCriado}, a.pub.Tipos())
	})

	t.Run("violação do índice único vira conflito", func(t *testing.T) {
		a := novoAmbiente(t)
		p := a.produto(t, "erp", true)
		afiliado := uuid.New()
		_, err := a.svc.CriarLink(ctx, afiliado, p.ID, nil)
		require.NoError(t, err)

		// insert concorrente que passou pela checagem antes do commit do primeiro
		err = classificarDuplicidade(ctx, a.svc.Repo, &Link{AfiliadoID: afiliado, ProdutoID: p.ID})
		assert.ErrorIs(t, err, ErrLinkDuplicado)
	})

	t.Run("depois de remover pode criar de novo", func(t *testing.T) {
		a := novoAmbiente(t)
		p := a.produto(t, "bi", true)
		afiliado := uuid.New()

		primeiro, err := a.svc.CriarLink(ctx, afiliado, p.ID, nil)
		require.NoError(t, err)
		require.NoError(t, a.svc.RemoverLink(ctx, afiliado, primeiro.ID))

		segundo, err := a.svc.CriarLink(ctx, afiliado, p.ID, nil)
		require.NoError(t, err)
		assert.NotEqual(t, primeiro.Code, segundo.Code)
	})

	t.Run("produto inexistente ou inativo", func(t *testing.T) {
		a := novoAmbiente(t)
		_, err := a.svc.CriarLink(ctx, uuid.New(), uuid.New(), nil)
		assert.ErrorIs(t, err, produtos.ErrProdutoNaoEncontrado)

		p := a.produto(t, "legado", false)
		_, err = a.svc.CriarLink(ctx, uuid.New(), p.ID, nil)
		assert.ErrorIs(t, err, produtos.ErrProdutoInativo)
	})

	t.Run("colisão de código é repetida", func(t *testing.T) {
		a := novoAmbiente(t)
		p1 := a.produto(t, "p1", true)
		p2 := a.produto(t, "p2", true)

		a.svc.gerarCodigo = sequencia("AAAA1111")
		_, err := a.svc.CriarLink(ctx, uuid.New(), p1.ID, nil)
		require.NoError(t, err)

		a.svc.gerarCodigo = sequencia("AAAA1111", "BBBB2222")
		l, err := a.svc.CriarLink(ctx, uuid.New(), p2.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, "BBBB2222", l.Code)
	})

	t.Run("tentativas esgotadas", func(t *testing.T) {
		a := novoAmbiente(t)
		p1 := a.produto(t, "p1", true)
		p2 := a.produto(t, "p2", true)

		a.svc.gerarCodigo = sequencia("CCCC3333")
		_, err := a.svc.CriarLink(ctx, uuid.New(), p1.ID, nil)
		require.NoError(t, err)

		_, err = a.svc.CriarLink(ctx, uuid.New(), p2.ID, nil)
		assert.ErrorIs(t, err, codigo.ErrTentativasEsgotadas)
	})

	t.Run("slug personalizado", func(t *testing.T) {
		a := novoAmbiente(t)
		p1 := a.produto(t, "p1", true)
		p2 := a.produto(t, "p2", true)

		l, err := a.svc.CriarLink(ctx, uuid.New(), p1.ID, ptr("  Promo-Natal "))
		require.NoError(t, err)
		require.NotNil(t, l.CustomSlug)
		assert.Equal(t, "promo-natal", *l.CustomSlug)

		_, err = a.svc.CriarLink(ctx, uuid.New(), p2.ID, ptr("promo-natal"))
		assert.ErrorIs(t, err, ErrSlugEmUso)

		_, err = a.svc.CriarLink(ctx, uuid.New(), p2.ID, ptr("com espaço"))
		assert.ErrorIs(t, err, ErrSlugInvalido)
	})
}

func TestRemoverLink(t *testing.T) {
	ctx := context.Background()
	a := novoAmbiente(t)
	p := a.produto(t, "crm", true)
	dono := uuid.New()

	l, err := a.svc.CriarLink(ctx, dono, p.ID, nil)
	require.NoError(t, err)

	err = a.svc.RemoverLink(ctx, uuid.New(), l.ID)
	assert.ErrorIs(t, err, ErrLinkNaoEncontrado)

	require.NoError(t, a.svc.RemoverLink(ctx, dono, l.ID))
	err = a.svc.RemoverLink(ctx, dono, l.ID)
	assert.ErrorIs(t, err, ErrLinkNaoEncontrado)

	list, err := a.svc.ListarLinks(ctx, dono)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRegistrarVisita(t *testing.T) {
	ctx := context.Background()
	a := novoAmbiente(t)
	p := a.produto(t, "crm", true)
	afiliado := uuid.New()
	l, err := a.svc.CriarLink(ctx, afiliado, p.ID, ptr("crm-vip"))
	require.NoError(t, err)

	_, err = a.svc.RegistrarVisita(ctx, l.Code, Acesso{IP: "200.1.2.3", UserAgent: "curl/8"})
	require.NoError(t, err)
	visto, err := a.svc.RegistrarVisita(ctx, "crm-vip", Acesso{IP: "200.1.2.4", Referer: strings.Repeat("x", 900)})
	require.NoError(t, err)
	assert.EqualValues(t, 2, visto.TotalClicks)

	lido, err := a.svc.Repo.BuscarPorID(ctx, l.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, lido.TotalClicks)

	var visitas []Visita
	require.NoError(t, a.svc.Repo.DB.Find(&visitas).Error)
	require.Len(t, visitas, 2)
	for _, v := range visitas {
		assert.Equal(t, afiliado, v.AfiliadoID)
		assert.Equal(t, l.ID, v.LinkID)
		assert.Len(t, v.IPHash, 64)
		assert.NotContains(t, v.IPHash, "200.1.2")
		if v.Referer != "" {
			assert.Len(t, v.Referer, 500)
		}
	}

	_, err = a.svc.RegistrarVisita(ctx, "NAOEXISTE", Acesso{})
	assert.ErrorIs(t, err, ErrLinkNaoEncontrado)

	require.NoError(t, a.svc.RemoverLink(ctx, afiliado, l.ID))
	_, err = a.svc.RegistrarVisita(ctx, l.Code, Acesso{})
	assert.ErrorIs(t, err, ErrLinkNaoEncontrado)
}

func TestHandlerRedirect(t *testing.T) {
	ctx := context.Background()
	a := novoAmbiente(t)
	p := a.produto(t, "crm", true)
	l, err := a.svc.CriarLink(ctx, uuid.New(), p.ID, nil)
	require.NoError(t, err)

	r := mux.NewRouter()
	r.HandleFunc("/r/{code}", NewHandler(a.svc).Redirect).Methods(http.MethodGet)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/r/"+l.Code, nil))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, l.TargetURL, rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieReferencia, cookies[0].Name)
	assert.Equal(t, l.Code, cookies[0].Value)
	assert.Equal(t, 45*24*60*60, cookies[0].MaxAge)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/r/ZZZZ9999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestURLDestino(t *testing.T) {
	u, err := urlDestino("https://app.exemplo.com/assinar", "ABCD1234")
	require.NoError(t, err)
	assert.Equal(t, "https://app.exemplo.com/assinar?ref=ABCD1234", u)

	_, err = urlDestino("://sem-esquema", "X")
	assert.Error(t, err)
}
