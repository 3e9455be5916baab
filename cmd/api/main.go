package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/innexar/afiliados-api/internal/afiliado"
	"github.com/innexar/afiliados-api/internal/auth"
	"github.com/innexar/afiliados-api/internal/codigo"
	"github.com/innexar/afiliados-api/internal/comissao"
	"github.com/innexar/afiliados-api/internal/config"
	"github.com/innexar/afiliados-api/internal/estrutura"
	"github.com/innexar/afiliados-api/internal/eventos"
	"github.com/innexar/afiliados-api/internal/link"
	"github.com/innexar/afiliados-api/internal/logger"
	"github.com/innexar/afiliados-api/internal/middleware"
	"github.com/innexar/afiliados-api/internal/produtos"
	"github.com/innexar/afiliados-api/internal/saque"
	"github.com/innexar/afiliados-api/internal/server"
	"github.com/innexar/afiliados-api/internal/stats"
	"github.com/innexar/afiliados-api/internal/utils/db"
)

func main() {
	cfg, err := config.Carregar()
	if err != nil {
		log.Fatal("Erro ao carregar configuração:", err)
	}
	logger.New(cfg.Log.Level)

	// valores monetários saem como número no JSON
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Conectar(ctx, cfg.DB)
	if err != nil {
		fatal("Erro ao conectar no banco", err)
	}
	if cfg.DB.Migrate {
		if err := db.RodarMigracoes(database); err != nil {
			fatal("Erro nas migrações", err)
		}
	}

	pub, err := eventos.Novo(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		fatal("Erro ao configurar eventos", err)
	}
	defer pub.Close()

	var cache stats.Cache
	if cfg.Redis.Addr != "" {
		rdb, err := stats.NovoRedis(ctx, cfg.Redis)
		if err != nil {
			fatal("Erro ao conectar no Redis", err)
		}
		defer rdb.Close()
		cache = &stats.CacheRedis{Redis: rdb}
		// painel do afiliado sai do cache a cada mudança confirmada
		pub = &stats.Invalidador{Cache: cache, Proximo: pub}
	}

	gerador, err := codigo.NovoGerador()
	if err != nil {
		fatal("Erro ao criar gerador de códigos", err)
	}
	tokens := auth.NovoGerenciador(cfg.Auth)

	// Repositórios
	prodRepo := produtos.NewRepository(database)
	estRepo := estrutura.NewRepository(database)
	afRepo := afiliado.NewRepository(database)
	linkRepo := link.NewRepository(database)
	comRepo := comissao.NewRepository(database)
	saqueRepo := saque.NewRepository(database)

	// Serviços
	comSvc := comissao.NewServico(comRepo, afRepo, estRepo, linkRepo, prodRepo, pub)
	saqueSvc := saque.NewServico(saqueRepo, afRepo, comRepo, pub)

	limite := middleware.NovoLimitePorIP(cfg.HTTP.VisitasPorSegundo, cfg.HTTP.VisitasBurst)
	go limite.Limpar(ctx, time.Minute)

	handler := server.NovoRouter(server.Handlers{
		Afiliados:  afiliado.NewHandler(afiliado.NewServico(afRepo, estRepo, gerador, tokens)),
		Estruturas: estrutura.NewHandler(estrutura.NewServico(estRepo)),
		Links:      link.NewHandler(link.NewServico(linkRepo, prodRepo, gerador, pub)),
		Comissoes:  comissao.NewHandler(comSvc),
		Saques:     saque.NewHandler(saqueSvc),
		Stats:      stats.NewHandler(stats.NewServico(linkRepo, comSvc, saqueSvc, cache, cfg.Redis.StatsTTL)),
		Produtos:   produtos.NewHandler(prodRepo),
	}, server.Opcoes{
		Tokens:         tokens,
		Limite:         limite,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		slog.Info("servidor rodando", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("Erro no servidor HTTP", err)
		}
	}()

	<-ctx.Done()
	slog.Info("encerrando servidor")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("falha no encerramento do servidor", "erro", err)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "erro", err)
	os.Exit(1)
}
