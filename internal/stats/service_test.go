package stats

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/innexar/afiliados-api/internal/afiliado"
	"github.com/innexar/afiliados-api/internal/auth"
	"github.com/innexar/afiliados-api/internal/comissao"
	"github.com/innexar/afiliados-api/internal/eventos"
	"github.com/innexar/afiliados-api/internal/link"
	"github.com/innexar/afiliados-api/internal/saque"
	"github.com/innexar/afiliados-api/internal/testutil"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type ambiente struct {
	db  *gorm.DB
	svc *Servico
}

func novoAmbiente(t *testing.T, cache Cache) *ambiente {
	db := testutil.NovoDB(t, afiliado.Migrate, comissao.Migrate, saque.Migrate,
		func(db *gorm.DB) error { return db.AutoMigrate(&link.Visita{}) })
	afs := afiliado.NewRepository(db)
	com := &comissao.Servico{Repo: comissao.NewRepository(db), Afiliados: afs}
	sq := saque.NewServico(saque.NewRepository(db), afs, com.Repo, nil)
	return &ambiente{db: db, svc: NewServico(link.NewRepository(db), com, sq, cache, time.Minute)}
}

func (a *ambiente) visitas(t *testing.T, afiliadoID uuid.UUID, n int) {
	for i := 0; i < n; i++ {
		require.NoError(t, a.db.Create(&link.Visita{AfiliadoID: afiliadoID, LinkID: uuid.New()}).Error)
	}
}

func (a *ambiente) comissao(t *testing.T, afiliadoID uuid.UUID, valor string, status comissao.Status) {
	require.NoError(t, a.db.Create(&comissao.Comissao{
		AfiliadoID:       afiliadoID,
		Tipo:             comissao.TipoVenda,
		DealValue:        d(valor),
		CommissionRate:   d("1"),
		CommissionAmount: d(valor),
		Amount:           d(valor),
		Currency:         "USD",
		Status:           status,
	}).Error)
}

func TestTaxaConversao(t *testing.T) {
	assert.True(t, TaxaConversao(0, 0).IsZero())
	assert.True(t, TaxaConversao(5, 0).IsZero())
	assert.Equal(t, "33.33", TaxaConversao(1, 3).StringFixed(2))
	assert.Equal(t, "66.67", TaxaConversao(2, 3).StringFixed(2))
	assert.Equal(t, "100.00", TaxaConversao(4, 4).StringFixed(2))
}

func TestObter(t *testing.T) {
	ctx := context.Background()

	t.Run("sem visitas a taxa é zero", func(t *testing.T) {
		a := novoAmbiente(t, nil)
		e, err := a.svc.Obter(ctx, uuid.New())
		require.NoError(t, err)
		assert.Zero(t, e.TotalVisits)
		assert.Zero(t, e.TotalConversions)
		assert.True(t, e.ConversionRate.IsZero())
		assert.True(t, e.TotalCommissions.IsZero())
	})

	t.Run("agrega visitas, conversões e saldos", func(t *testing.T) {
		a := novoAmbiente(t, nil)
		id := uuid.New()
		a.visitas(t, id, 3)
		a.comissao(t, id, "100", comissao.StatusAprovada)
		a.comissao(t, id, "40", comissao.StatusPendente)
		a.comissao(t, id, "999", comissao.StatusCancelada)
		require.NoError(t, a.db.Create(&saque.Saque{AfiliadoID: id, Amount: d("60"), PixKey: "x", Method: saque.MetodoPix, Status: saque.StatusPendente}).Error)

		e, err := a.svc.Obter(ctx, id)
		require.NoError(t, err)
		assert.EqualValues(t, 3, e.TotalVisits)
		// canceladas também contam como conversão
		assert.EqualValues(t, 3, e.TotalConversions)
		assert.Equal(t, "100.00", e.ConversionRate.StringFixed(2))
		assert.Equal(t, "140.00", e.TotalCommissions.StringFixed(2))
		assert.Equal(t, "40.00", e.PendingCommissions.StringFixed(2))
		assert.Equal(t, "100.00", e.ApprovedCommissions.StringFixed(2))
		assert.Equal(t, "40.00", e.AvailableBalance.StringFixed(2))
	})
}

func TestObterComCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	a := novoAmbiente(t, &CacheRedis{Redis: client})
	id := uuid.New()
	a.visitas(t, id, 2)

	primeira, err := a.svc.Obter(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 2, primeira.TotalVisits)
	assert.True(t, mr.Exists("afiliados:stats:"+id.String()))
	assert.Equal(t, time.Minute, mr.TTL("afiliados:stats:"+id.String()))

	a.visitas(t, id, 5)
	cacheada, err := a.svc.Obter(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 2, cacheada.TotalVisits)

	mr.FastForward(2 * time.Minute)
	nova, err := a.svc.Obter(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 7, nova.TotalVisits)
}

type cacheQuebrado struct{}

func (cacheQuebrado) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("conexão recusada")
}

func (cacheQuebrado) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("conexão recusada")
}

func (cacheQuebrado) Del(context.Context, string) error {
	return errors.New("conexão recusada")
}

func TestObterCacheIndisponivel(t *testing.T) {
	a := novoAmbiente(t, cacheQuebrado{})
	id := uuid.New()
	a.visitas(t, id, 4)

	e, err := a.svc.Obter(context.Background(), id)
	require.NoError(t, err)
	assert.EqualValues(t, 4, e.TotalVisits)
}

func TestInvalidador(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	t.Run("apaga a chave do afiliado e repassa o evento", func(t *testing.T) {
		id := uuid.New().String()
		outro := uuid.New().String()
		require.NoError(t, mr.Set("afiliados:stats:"+id, "{}"))
		require.NoError(t, mr.Set("afiliados:stats:"+outro, "{}"))

		mem := &eventos.Memoria{}
		inv := &Invalidador{Cache: &CacheRedis{Redis: client}, Proximo: mem}
		eventos.Enviar(ctx, inv, eventos.SaqueSolicitado, id, nil)

		assert.False(t, mr.Exists("afiliados:stats:"+id))
		assert.True(t, mr.Exists("afiliados:stats:"+outro))
		assert.Equal(t, []string{eventos.SaqueSolicitado}, mem.Tipos())
		assert.NoError(t, inv.Close())
	})

	t.Run("cache fora do ar não impede a publicação", func(t *testing.T) {
		mem := &eventos.Memoria{}
		inv := &Invalidador{Cache: cacheQuebrado{}, Proximo: mem}
		require.NoError(t, inv.Publicar(ctx, eventos.Evento{Tipo: eventos.ComissaoRegistrada, Chave: "a"}))
		assert.Equal(t, []string{eventos.ComissaoRegistrada}, mem.Tipos())
	})

	t.Run("sem próximo publicador", func(t *testing.T) {
		inv := &Invalidador{Cache: &CacheRedis{Redis: client}}
		assert.NoError(t, inv.Publicar(ctx, eventos.Evento{Tipo: eventos.LinkCriado, Chave: "a"}))
		assert.NoError(t, inv.Close())
	})
}

func TestObterDepoisDeSaque(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := &CacheRedis{Redis: client}
	a := novoAmbiente(t, cache)
	a.svc.Saques.Eventos = &Invalidador{Cache: cache, Proximo: &eventos.Memoria{}}

	af := &afiliado.Afiliado{
		Nome:         "Carla",
		Email:        uuid.NewString() + "@exemplo.com",
		SenhaHash:    "x",
		ReferralCode: uuid.NewString()[:8],
		Status:       afiliado.StatusAtivo,
		PixKey:       "carla@exemplo.com",
		PixKeyType:   "email",
	}
	require.NoError(t, a.svc.Saques.Afiliados.Criar(ctx, af))
	a.comissao(t, af.ID, "500", comissao.StatusAprovada)

	antes, err := a.svc.Obter(ctx, af.ID)
	require.NoError(t, err)
	assert.Equal(t, "500.00", antes.AvailableBalance.StringFixed(2))
	require.True(t, mr.Exists("afiliados:stats:"+af.ID.String()))

	_, err = a.svc.Saques.SolicitarSaque(ctx, af.ID, d("200"))
	require.NoError(t, err)
	assert.False(t, mr.Exists("afiliados:stats:"+af.ID.String()))

	depois, err := a.svc.Obter(ctx, af.ID)
	require.NoError(t, err)
	assert.Equal(t, "300.00", depois.AvailableBalance.StringFixed(2))
}

func TestHandler(t *testing.T) {
	a := novoAmbiente(t, nil)
	h := NewHandler(a.svc)

	rec := httptest.NewRecorder()
	h.GetStats(rec, httptest.NewRequest(http.MethodGet, "/affiliate/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/affiliate/stats", nil)
	req = req.WithContext(auth.ComIdentidade(req.Context(), uuid.New(), auth.RoleAfiliado))
	rec = httptest.NewRecorder()
	h.GetStats(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalVisits":0`)
}
