package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/tenant-auth-server/auth"
	"github.com/jrsteele09/tenant-auth-server/internal/config"
	"github.com/jrsteele09/tenant-auth-server/internal/logger"
	"github.com/jrsteele09/tenant-auth-server/internal/maintenance"
	"github.com/jrsteele09/tenant-auth-server/magiclink"
	"github.com/jrsteele09/tenant-auth-server/mail"
	"github.com/jrsteele09/tenant-auth-server/memberships"
	membershiprepofake "github.com/jrsteele09/tenant-auth-server/memberships/repofake"
	"github.com/jrsteele09/tenant-auth-server/projects"
	projectrepofake "github.com/jrsteele09/tenant-auth-server/projects/repofake"
	resetrepofake "github.com/jrsteele09/tenant-auth-server/resets/repofake"
	"github.com/jrsteele09/tenant-auth-server/server"
	"github.com/jrsteele09/tenant-auth-server/session"
	"github.com/jrsteele09/tenant-auth-server/store/postgres"
	tenantrepofakes "github.com/jrsteele09/tenant-auth-server/tenants/repofakes"
	"github.com/jrsteele09/tenant-auth-server/token"
	"github.com/jrsteele09/tenant-auth-server/token/refresh"
	refreshrepofake "github.com/jrsteele09/tenant-auth-server/token/refresh/repofake"
	fakeuserrepo "github.com/jrsteele09/tenant-auth-server/users/repofake"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	storeAuto     = "auto"
	storeMemory   = "memory"
	storePostgres = "postgres"

	shutdownTimeout = 5 * time.Second
)

type ServeCmd struct {
	Listen     string   `help:"HTTP listen address, overrides PORT" env:"LISTEN_ADDR"`
	StoreType  string   `help:"credential store (auto, memory or postgres), auto selects postgres when DATABASE_URL is set" default:"auto" enum:"auto,memory,postgres" env:"STORE_TYPE"`
	DevTenants []string `help:"tenants seeded on startup when using the memory store" default:"acme" env:"DEV_TENANTS"`
}

// backends are the stores behind one running server
type backends struct {
	repos      auth.Repos
	projects   projects.Repo
	refresh    refresh.Repo
	magicLinks magiclink.Store
	closers    []func()
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func (c *ServeCmd) Run(globals *Globals) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.Setup(globals.Debug || !cfg.IsProduction())
	displayAppname(cfg.GetAppName())
	log.Info().Str("version", globals.Version).Str("env", cfg.GetEnv()).Msg("Starting server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := c.openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.close()

	dispatcher := mail.NewDispatcher(newMailer(cfg, log), cfg.GetMailTimeout(), cfg.GetMailMaxAttempts())
	defer dispatcher.Wait()

	handler, err := buildHandler(ctx, cfg, stores, dispatcher, log)
	if err != nil {
		return err
	}

	addr := c.Listen
	if addr == "" {
		addr = cfg.GetPort()
	}
	srv := configureHTTPServer(addr, handler)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(srv, log)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("Shutting down")
	return shutdown(srv)
}

func (c *ServeCmd) openBackends(ctx context.Context, cfg config.Config, log zerolog.Logger) (*backends, error) {
	storeType := c.StoreType
	if storeType == storeAuto {
		storeType = storeMemory
		if cfg.GetDatabaseURL() != "" {
			storeType = storePostgres
		}
	}

	var b *backends
	switch storeType {
	case storePostgres:
		if cfg.GetDatabaseURL() == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres store")
		}
		stores, err := postgres.Open(ctx, cfg.GetDatabaseURL(), cfg.GetAutoMigrate())
		if err != nil {
			return nil, err
		}
		b = &backends{
			repos: auth.Repos{
				Tenants:     stores.Tenants,
				Users:       stores.Users,
				Memberships: stores.Memberships,
				Resets:      stores.Resets,
			},
			projects: stores.Projects,
			refresh:  stores.RefreshTokens,
			closers:  []func(){stores.Close},
		}
		log.Info().Msg("Using postgres store")
	default:
		if cfg.IsProduction() {
			return nil, errors.New("the memory store cannot be used in production")
		}
		memberRepo := membershiprepofake.NewFakeMembershipRepo()
		tenantRepo := tenantrepofakes.NewFakeTenantRepo()
		b = &backends{
			repos: auth.Repos{
				Tenants:     tenantRepo,
				Users:       fakeuserrepo.NewFakeUserRepo(memberRepo),
				Memberships: memberRepo,
				Resets:      resetrepofake.NewFakeResetRepo(),
			},
			projects: projectrepofake.NewFakeProjectRepo(),
			refresh:  refreshrepofake.NewFakeRefreshTokenRepo(),
		}
		for _, slug := range c.DevTenants {
			if _, _, err := maintenance.SeedTenant(ctx, tenantRepo, slug, ""); err != nil {
				return nil, errors.Wrapf(err, "seed tenant %s", slug)
			}
		}
		log.Warn().Strs("tenants", c.DevTenants).Msg("Using memory store, data is lost on exit")
	}

	if addr := cfg.GetRedisAddr(); addr != "" {
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{addr},
			Password: cfg.GetRedisPassword(),
			DB:       cfg.GetRedisDB(),
		})
		b.closers = append(b.closers, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			b.close()
			return nil, errors.Wrapf(err, "connect to redis at %s", addr)
		}
		b.magicLinks = magiclink.NewRedisStore(client)
		log.Info().Str("addr", addr).Msg("Using redis magic link store")
	} else {
		b.magicLinks = magiclink.NewMemoryStore(time.Now)
	}
	return b, nil
}

func newMailer(cfg config.MailConfig, log zerolog.Logger) mail.Mailer {
	if cfg.SmtpEnabled() {
		return mail.NewSMTPMailer(cfg.GetSmtpHost(), cfg.GetSmtpPort(), cfg.GetSmtpAccount(), cfg.GetSmtpPassword(), cfg.GetMailFrom())
	}
	log.Warn().Msg("SMTP is not configured, emails are written to the log")
	return mail.LogMailer{}
}

func buildHandler(ctx context.Context, cfg config.Config, b *backends, dispatcher *mail.Dispatcher, log zerolog.Logger) (http.Handler, error) {
	codec, err := token.NewCodec(
		token.NewHMACSigner(cfg.GetAccessTokenSecret()),
		token.NewHMACSigner(cfg.GetRefreshTokenSecret()),
		cfg.GetAccessTokenExpiry(),
	)
	if err != nil {
		return nil, err
	}
	sessions, err := session.NewManager(codec, b.refresh, cfg)
	if err != nil {
		return nil, err
	}

	var options []auth.ServiceOption
	if cfg.GetGoogleClientID() != "" {
		provider, err := auth.NewGoogleProvider(ctx, cfg, auth.DefaultGoogleEndpoints())
		if err != nil {
			return nil, err
		}
		options = append(options, auth.WithIdentityProvider(provider))
	} else {
		log.Info().Msg("Google sign-in is disabled")
	}

	authService, err := auth.NewService(b.repos, sessions, b.magicLinks, dispatcher, cfg, options...)
	if err != nil {
		return nil, err
	}
	authorizer, err := auth.NewAuthorizer(codec, b.repos.Tenants, b.repos.Memberships)
	if err != nil {
		return nil, err
	}

	return server.New(cfg, server.Services{
		Auth:       authService,
		Authorizer: authorizer,
		Members:    memberships.NewService(b.repos.Memberships, b.repos.Users),
		Projects:   projects.NewService(b.projects),
	})
}

func listenAndServe(srv *http.Server, log zerolog.Logger) error {
	log.Info().Str("addr", srv.Addr).Msg("Server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
