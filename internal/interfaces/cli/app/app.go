// Package app wires configuration, session, transport and controllers for
// the CLI commands.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"expopanel/internal/application/approval"
	"expopanel/internal/application/catalog"
	"expopanel/internal/application/entity"
	"expopanel/internal/application/loading"
	"expopanel/internal/application/login"
	"expopanel/internal/application/modal"
	"expopanel/internal/application/navigation"
	"expopanel/internal/application/session"
	"expopanel/internal/domain/agenda"
	"expopanel/internal/domain/banner"
	"expopanel/internal/domain/exhibitor"
	"expopanel/internal/domain/exhibitoruser"
	domain "expopanel/internal/domain/session"
	"expopanel/internal/infrastructure/auth"
	"expopanel/internal/infrastructure/config"
	"expopanel/internal/infrastructure/gateway"
	"expopanel/internal/infrastructure/kvstore"
	"expopanel/internal/infrastructure/permission"
	"expopanel/internal/infrastructure/repository"
	"expopanel/internal/shared/errors"
	"expopanel/internal/shared/logger"
)

// Options are the root command's persistent flags.
type Options struct {
	ConfigFile string
	Output     string
}

// App holds one process worth of state. Every singleton of the panel is a
// field here rather than a package variable.
type App struct {
	Config  *config.Config
	Logger  logger.Interface
	Session *session.Store
	Client  *gateway.Client
	Modal   *modal.Host
	Loading *loading.Indicator
	Guard   *navigation.Guard
	Login   *login.Flow

	Exhibitors     *entity.Controller[exhibitor.Exhibitor]
	ExhibitorUsers *entity.Controller[exhibitoruser.User]
	Agenda         *entity.Controller[agenda.Item]
	Banners        *entity.Controller[banner.Banner]
	Requests       *approval.Controller

	storage kvstore.Store
	spinner *spinner
}

// New loads configuration and builds the object graph. The persisted
// session is hydrated before New returns.
func New(ctx context.Context, opts *Options, stderr io.Writer) (*App, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	storage, err := kvstore.New(ctx, &cfg.Session, &cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to open session storage: %w", err)
	}

	store := session.NewStore(storage, auth.NewTokenDecoder(), log.Named("session"),
		session.WithRequireExpiry(cfg.Session.RequireExpiry))
	if err := store.Hydrate(ctx); err != nil {
		log.Warnw("failed to restore session", "error", err)
	}

	client := gateway.NewClient(cfg.API.BaseURL, gateway.TokenFunc(store.Token),
		gateway.WithTimeout(cfg.API.Timeout()),
		gateway.WithLogger(log.Named("gateway")),
	)

	guard, err := newGuard(log)
	if err != nil {
		_ = storage.Close()
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Logger:  log,
		Session: store,
		Client:  client,
		Modal:   modal.NewHost(modal.NopEnvironment()),
		Loading: loading.New(),
		Guard:   guard,
		storage: storage,
	}

	if f, ok := stderr.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		a.spinner = newSpinner(stderr, log)
		a.Loading.Subscribe(a.spinner.set)
	}

	a.wireControllers(NewNotifier(stderr))
	a.Login = login.NewFlow(auth.NewCodeAuthenticator(client, cfg.Endpoints.Auth), store, log,
		login.WithCooldown(cfg.Login.ResendCooldown()))

	return a, nil
}

func newGuard(log logger.Interface) (*navigation.Guard, error) {
	menu := navigation.DefaultMenu()
	rules := navigation.Rules(menu)
	policies := make([]permission.Policy, 0, len(rules))
	for _, r := range rules {
		policies = append(policies, permission.Policy{Role: r.Role, Path: r.Path, Action: navigation.ActionView})
	}
	enforcer, err := permission.NewEnforcer(policies, log.Named("permission"))
	if err != nil {
		return nil, fmt.Errorf("failed to build permissions: %w", err)
	}
	return navigation.NewGuard(menu, enforcer), nil
}

func (a *App) wireControllers(notifier entity.Notifier) {
	ep := a.Config.Endpoints
	log := a.Logger

	a.Exhibitors = entity.NewController(
		catalog.Exhibitors(ep.Exhibitors.ImageBase),
		repository.NewRestRepository(a.Client, repository.ExhibitorDefinition(ep.Exhibitors), log),
		a.Modal, a.Loading, notifier, log,
	)

	options := func(ctx context.Context) ([]exhibitoruser.ExhibitorOption, error) {
		return repository.FetchAll[exhibitoruser.ExhibitorOption](ctx, a.Client, ep.ExhibitorUsers.Options)
	}
	a.ExhibitorUsers = entity.NewController(
		catalog.ExhibitorUsers(options),
		repository.NewRestRepository(a.Client, repository.ExhibitorUserDefinition(ep.ExhibitorUsers), log),
		a.Modal, a.Loading, notifier, log,
	)

	a.Agenda = entity.NewController(
		catalog.Agenda(),
		repository.NewRestRepository(a.Client, repository.AgendaDefinition(ep.Agenda), log),
		a.Modal, a.Loading, notifier, log,
	)

	a.Banners = entity.NewController(
		catalog.Banners(ep.Banners.ImageBase),
		repository.NewRestRepository(a.Client, repository.BannerDefinition(ep.Banners), log),
		a.Modal, a.Loading, notifier, log,
	)

	a.Requests = approval.NewController(
		repository.NewVisitorRequestRepository(a.Client, ep.VisitorRequests.List, ep.VisitorRequests.Base, log),
		a.Loading, notifier, log.Named("approval"),
	)
	a.Requests.OnChange(a.ExhibitorUsers.Reload)
}

// RequireUser returns the session user, or an unauthorized error when
// nobody is logged in.
func (a *App) RequireUser() (*domain.User, error) {
	snap := a.Session.Snapshot()
	if !snap.IsAuthenticated() {
		return nil, errors.NewUnauthorizedError("not logged in", "run expopanel login first")
	}
	return snap.User, nil
}

// Authorize checks that the session user may open path.
func (a *App) Authorize(path string) (*domain.User, error) {
	user, err := a.RequireUser()
	if err != nil {
		return nil, err
	}
	if err := a.Guard.Require(user.Role, path); err != nil {
		return nil, err
	}
	return user, nil
}

// Close stops the expiry timer and releases the session storage.
func (a *App) Close() {
	a.Session.Close()
	if err := a.storage.Close(); err != nil {
		a.Logger.Warnw("failed to close session storage", "error", err)
	}
}
