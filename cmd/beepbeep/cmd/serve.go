package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/jmfallon/beepbeep/internal/api/handlers"
	"github.com/jmfallon/beepbeep/internal/api/middleware"
	"github.com/jmfallon/beepbeep/internal/config"
	"github.com/jmfallon/beepbeep/internal/dupcheck"
	"github.com/jmfallon/beepbeep/internal/ebay"
	"github.com/jmfallon/beepbeep/internal/publish"
	"github.com/jmfallon/beepbeep/internal/sku"
	"github.com/jmfallon/beepbeep/internal/store"
	"github.com/jmfallon/beepbeep/internal/token"
	"github.com/jmfallon/beepbeep/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and token refresher",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelConnect()

	st, err := store.NewPostgresStore(connectCtx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer st.Close()

	// Per-user seller tokens, refreshed on demand and proactively.
	managerOpts := []token.ManagerOption{token.WithManagerLogger(log)}
	if cfg.Ebay.Sandbox {
		managerOpts = append(managerOpts, token.WithManagerTokenURL(ebay.SandboxTokenURL))
	}
	manager := token.NewManager(st, cfg.Ebay.ClientID, cfg.Ebay.ClientSecret, managerOpts...)

	if cfg.Refresher.Enabled {
		refresher, err := token.NewRefresher(
			manager, st, cfg.Refresher.Interval, cfg.Refresher.Window, log,
		)
		if err != nil {
			return fmt.Errorf("creating token refresher: %w", err)
		}
		refresher.Start()
		defer func() { <-refresher.Stop().Done() }()
	}

	// eBay clients. The catalog API uses an application token; the sell and
	// account APIs act on behalf of the seller.
	baseURL := ebay.APIBaseURL(cfg.Ebay.Sandbox)
	limiter := ebay.NewRateLimiter(
		cfg.Ebay.RateLimit.PerSecond,
		cfg.Ebay.RateLimit.Burst,
		cfg.Ebay.RateLimit.DailyLimit,
	)

	sell := ebay.NewSellClient(manager,
		ebay.WithSellBaseURL(baseURL),
		ebay.WithSellMarketplace(cfg.Ebay.Marketplace),
		ebay.WithSellRateLimiter(limiter),
	)
	account := ebay.NewAccountClient(manager, ebay.WithAccountBaseURL(baseURL))

	appTokenOpts := []ebay.AppTokenOption{}
	if cfg.Ebay.Sandbox {
		appTokenOpts = append(appTokenOpts, ebay.WithTokenURL(ebay.SandboxTokenURL))
	}
	appTokens := ebay.NewAppTokenProvider(cfg.Ebay.ClientID, cfg.Ebay.ClientSecret, appTokenOpts...)
	catalog := ebay.NewCatalogClient(appTokens,
		ebay.WithCatalogBaseURL(baseURL),
		ebay.WithCatalogMarketplace(cfg.Ebay.Marketplace),
	)

	generator := sku.NewGenerator(st, sell, sku.Format{
		Prefix:       cfg.Sku.DefaultPrefix,
		Pad:          cfg.Sku.Pad,
		VerifyUnique: *cfg.Sku.VerifyUnique,
	}, sku.WithGeneratorLogger(log))

	checker := dupcheck.NewChecker(sell,
		dupcheck.WithPageSize(cfg.Duplicate.PageSize),
		dupcheck.WithMaxMatches(cfg.Duplicate.MaxMatches),
		dupcheck.WithTimeout(cfg.Duplicate.Timeout),
		dupcheck.WithOnFailure(cfg.Duplicate.OnFailure),
		dupcheck.WithCheckerLogger(log),
	)

	publisher := publish.NewPublisher(sell, generator, checker, st,
		cfg.Ebay.Marketplace,
		publish.WithPublisherLogger(log),
	)

	exchanger := ebay.NewOAuthExchanger(ebay.OAuthConfig{
		ClientID:     cfg.Ebay.ClientID,
		ClientSecret: cfg.Ebay.ClientSecret,
		RedirectURI:  cfg.Ebay.RedirectURI,
		Sandbox:      cfg.Ebay.Sandbox,
		Scopes:       cfg.Ebay.Scopes,
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(middleware.RequestLog(log))
	e.Use(middleware.Metrics())
	e.Use(middleware.Recovery(log))

	health := handlers.NewHealthHandler(st)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("Beep Beep API", Version))
	handlers.RegisterSearchRoutes(api, handlers.NewSearchHandler(catalog))
	handlers.RegisterDraftRoutes(api, handlers.NewDraftsHandler(st))
	handlers.RegisterPublishRoutes(api, handlers.NewPublishHandler(st, publisher))
	handlers.RegisterDupcheckRoutes(api, handlers.NewDupcheckHandler(checker))
	handlers.RegisterSettingsRoutes(api, handlers.NewSettingsHandler(st, account, cfg.Ebay.Marketplace))
	handlers.RegisterKeywordRoutes(api, handlers.NewKeywordsHandler(st))
	handlers.RegisterOAuthRoutes(api, handlers.NewOAuthHandler(exchanger, st))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server", "addr", addr, "sandbox", cfg.Ebay.Sandbox)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("server stopped")
	return nil
}
