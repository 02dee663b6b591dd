package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"food-delivery/api"
	"food-delivery/config"
	"food-delivery/db"
	"food-delivery/events"
	"food-delivery/logger"
	"food-delivery/models"
	"food-delivery/notify"
	"food-delivery/reports"
	"food-delivery/services"
	"food-delivery/store"
)

const usage = `usage: food-delivery [command]

commands:
  serve                      run the HTTP API (default)
  migrate                    apply embedded SQL migrations
  reset-password <username>  print a new generated password for the account
  grant-membership <username> <tier> <rate> <days>
                             give a customer a membership with a custom rate
  report daily <YYYY-MM-DD>  print order and payment totals for a day`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New("food-delivery", cfg.Log.Level, cfg.Log.Format)

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	args := os.Args[min(len(os.Args), 2):]

	switch cmd {
	case "migrate":
		runMigrate(cfg, log)
		return
	case "serve", "reset-password", "grant-membership", "report":
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "startup:", err)
		os.Exit(1)
	}

	switch cmd {
	case "reset-password":
		err = a.resetPassword(ctx, args)
	case "grant-membership":
		err = a.grantMembership(ctx, args)
	case "report":
		err = a.report(ctx, args)
	default:
		err = a.serve(ctx)
	}
	a.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runMigrate(cfg *config.Config, log *slog.Logger) {
	ctx := context.Background()
	if err := db.Init(ctx, cfg.DB, log); err != nil {
		fmt.Fprintln(os.Stderr, "db:", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := applyMigrations(ctx, log); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

type app struct {
	cfg      *config.Config
	log      *slog.Logger
	accounts *services.AccountService
	roles    *services.Roles
	sessions store.Sessions
	reports  *reports.Repository
	consumer *events.Consumer
	closers  []func()
}

// newApp wires repositories, optional integrations and services for cfg.
func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}
	ok := false
	defer func() {
		if !ok {
			a.close()
		}
	}()

	type primary interface {
		services.CatalogRepository
		services.CartStore
		services.OrderRepository
		services.MembershipRepository
		services.PaymentRepository
		services.AccountRepository
		services.ThrottleStore
		notify.ChatDirectory
	}
	var (
		repo      primary
		reportSrc services.ReportSource
	)
	switch cfg.Store.Backend {
	case "memory":
		mem := store.NewMemory()
		repo, reportSrc = mem, mem
		log.Warn("using in-memory store; data is lost on restart")
	default:
		if err := db.Init(ctx, cfg.DB, log); err != nil {
			return nil, fmt.Errorf("db: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if autoMigrate() {
			if err := applyMigrations(ctx, log); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		repo = store.NewPostgres(db.Pool)

		sqlDB, err := reports.Open(cfg.DB.DSN())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { closeQuietly(log, "reports db", sqlDB) })
		a.reports = reports.NewRepository(sqlDB)
		reportSrc = a.reports
	}

	var carts services.CartStore = repo
	a.sessions = store.NewMemorySessions(cfg.Store.SessionTTL)
	if cfg.Redis.Addr != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { closeQuietly(log, "redis", rdb) })
		a.sessions = store.NewRedisSessions(rdb, cfg.Store.SessionTTL)
		if cfg.Store.CartBackend == "redis" {
			carts = store.NewRedisCarts(rdb, cfg.Store.CartTTL)
		}
	}

	var telegram *notify.Telegram
	if cfg.Telegram.Token != "" {
		bot, err := notify.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			return nil, err
		}
		telegram = notify.NewTelegram(bot, repo, log)
		log.Info("telegram notifications enabled", slog.String("bot", bot.Self.UserName))
	}

	var (
		publisher services.EventPublisher
		notifier  services.StatusNotifier
	)
	if telegram != nil {
		notifier = telegram
	}
	if len(cfg.Kafka.Brokers) > 0 {
		w := events.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		a.closers = append(a.closers, func() { closeQuietly(log, "kafka writer", w) })
		publisher = events.NewKafkaPublisher(w)
		if telegram != nil {
			// Notifications follow the event stream instead of the request path.
			r := events.NewReader(cfg.Kafka.Brokers, cfg.Kafka.Topic, "food-delivery-notify")
			a.closers = append(a.closers, func() { closeQuietly(log, "kafka reader", r) })
			a.consumer = &events.Consumer{Reader: r, Handle: events.StatusChanges(telegram.NotifyStatus), Log: log}
			notifier = nil
		}
	}

	catalog := services.NewCatalogService(repo, log)
	a.roles = &services.Roles{
		Catalog:  catalog,
		Carts:    services.NewCartService(carts, catalog, log),
		Orders:   services.NewOrderService(repo, catalog, publisher, notifier, log),
		Pricing:  services.NewPricingService(repo, log),
		Payments: services.NewPaymentService(repo, log),
		Reports:  reportSrc,
		Log:      log,
	}
	a.accounts = services.NewAccountService(repo, repo, log)
	ok = true
	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *app) serve(ctx context.Context) error {
	h := &api.Handler{
		Accounts: a.accounts,
		Sessions: a.sessions,
		Roles:    a.roles,
		QR:       services.DefaultQRGenerator{BaseURL: a.cfg.HTTP.PublicURL},
		Log:      a.log,
	}
	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           api.NewRouter(h, a.cfg.HTTP.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if a.consumer != nil {
		go a.consumer.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (a *app) resetPassword(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New(usage)
	}
	password, err := a.accounts.ResetPassword(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("New password for %s: %s\n", args[0], password)
	return nil
}

func (a *app) grantMembership(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return errors.New(usage)
	}
	rate, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("rate: %w", err)
	}
	days, err := strconv.Atoi(args[3])
	if err != nil {
		return fmt.Errorf("days: %w", err)
	}
	acc, err := a.accounts.Lookup(ctx, args[0])
	if err != nil {
		return err
	}
	if acc.Role != models.RoleCustomer {
		return fmt.Errorf("%s is not a customer", acc.Username)
	}
	m, err := a.roles.Pricing.Subscribe(ctx, acc.ID, models.Tier(args[1]), rate, days)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s at %.2f%% until %s\n", acc.Username, m.Tier, m.DiscountRate, m.ExpiresAt.Format(time.DateOnly))
	return nil
}

func (a *app) report(ctx context.Context, args []string) error {
	if len(args) != 2 || args[0] != "daily" {
		return errors.New(usage)
	}
	if a.reports == nil {
		return errors.New("reports need STORE_BACKEND=postgres")
	}
	s, err := a.reports.DailyStats(ctx, args[1])
	if err != nil {
		return err
	}
	fmt.Printf("Date:        %s\n", s.Date)
	fmt.Printf("Orders:      %d\n", s.OrdersCount)
	fmt.Printf("Delivered:   %d\n", s.DeliveredCount)
	fmt.Printf("Cancelled:   %d\n", s.CancelledCount)
	fmt.Printf("Collected:   %.2f\n", s.CompletedAmount)
	fmt.Printf("Refunded:    %.2f\n", s.RefundedAmount)
	return nil
}

// AUTO_MIGRATE=1 (or "true") applies migrations before serving.
func autoMigrate() bool {
	v := strings.TrimSpace(os.Getenv("AUTO_MIGRATE"))
	return v == "1" || strings.EqualFold(v, "true")
}

func closeQuietly[T interface{ Close() error }](log *slog.Logger, name string, c T) {
	if err := c.Close(); err != nil {
		log.Warn("close", slog.String("resource", name), slog.Any("error", err))
	}
}
