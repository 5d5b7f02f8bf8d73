// Package console собирает компоненты консоли и запускает HTTP-сервер.
package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/moviestream-console/internal/adbenefits"
	"github.com/magabrotheeeer/moviestream-console/internal/admin"
	"github.com/magabrotheeeer/moviestream-console/internal/apiclient"
	"github.com/magabrotheeeer/moviestream-console/internal/cache"
	"github.com/magabrotheeeer/moviestream-console/internal/config"
	"github.com/magabrotheeeer/moviestream-console/internal/endpoints"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/navigator"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/sl"
	"github.com/magabrotheeeer/moviestream-console/internal/models"
	"github.com/magabrotheeeer/moviestream-console/internal/netstatus"
	"github.com/magabrotheeeer/moviestream-console/internal/push"
	"github.com/magabrotheeeer/moviestream-console/internal/services/dashboard"
	"github.com/magabrotheeeer/moviestream-console/internal/services/movies"
	"github.com/magabrotheeeer/moviestream-console/internal/services/notifications"
	"github.com/magabrotheeeer/moviestream-console/internal/services/ratings"
	"github.com/magabrotheeeer/moviestream-console/internal/services/reports"
	"github.com/magabrotheeeer/moviestream-console/internal/services/roles"
	"github.com/magabrotheeeer/moviestream-console/internal/services/subscription"
	"github.com/magabrotheeeer/moviestream-console/internal/services/users"
	"github.com/magabrotheeeer/moviestream-console/internal/services/userstats"
	"github.com/magabrotheeeer/moviestream-console/internal/services/watchlater"
	"github.com/magabrotheeeer/moviestream-console/internal/session"
)

// shutdownTimeout время на корректную остановку HTTP-сервера.
const shutdownTimeout = 15 * time.Second

// consumerWorkers число одновременно обрабатываемых сообщений брокера.
const consumerWorkers = 4

// App компоненты консоли.
type App struct {
	server *http.Server
	logger *slog.Logger
	cfg    *config.Config

	redis     *cache.Redis
	amqpConn  *amqp.Connection
	publisher *rabbitmq.Publisher

	session  *session.Session
	nav      *navigator.Recorder
	manager  *adbenefits.Manager
	monitor  *netstatus.Monitor
	notice   *netstatus.Notice
	listener *push.Listener

	patchUsers push.Handler
}

// Deps зависимости обработчиков консоли.
type Deps struct {
	Session      *session.Session
	Manager      *adbenefits.Manager
	Monitor      *netstatus.Monitor
	Notice       *netstatus.Notice
	ReportsTable *admin.Table[models.Report]
	UsersTable   *admin.Table[models.User]
	ReportsBulk  *ReportsBulk
	UsersBulk    *UsersBulk

	MoviesTable        *admin.Table[models.Movie]
	SubscriptionsTable *admin.Table[models.PremiumSubscription]

	Reports       *reports.Service
	Roles         *roles.Service
	Dashboard     *dashboard.Service
	Ratings       *ratings.Service
	WatchLater    *watchlater.Service
	Notifications *notifications.Service
	UserStats     *userstats.Service
}

// ReportsBulk связывает массовую смену статуса с сервисом и таблицей жалоб.
type ReportsBulk struct {
	bulk  *admin.Bulk
	svc   *reports.Service
	table *admin.Table[models.Report]
}

// UpdateReportStatus меняет статус жалоб req.IDs.
func (b *ReportsBulk) UpdateReportStatus(ctx context.Context, req admin.BulkReportStatus) error {
	return b.bulk.UpdateReportStatus(ctx, b.svc, b.table, req)
}

// UsersBulk связывает массовое включение пользователей с сервисом и таблицей.
type UsersBulk struct {
	bulk  *admin.Bulk
	svc   *users.Service
	table *admin.Table[models.User]
}

// SetUsersActive включает или отключает пользователей ids.
func (b *UsersBulk) SetUsersActive(ctx context.Context, ids []string, active bool) error {
	return b.bulk.SetUsersActive(ctx, b.svc, b.table, ids, active)
}

// New создаёт приложение. Хранилище сессии Redis используется, если задан адрес,
// иначе сессия хранится в памяти процесса. RabbitMQ подключается, если задан AMQPURL:
// при включённом websocket-канале события публикуются в обменник, при выключенном
// процесс сам получает их из обменника.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "console.New"
	a := &App{logger: logger, cfg: cfg}

	var store session.Storage
	if cfg.RedisAddress != "" {
		rdb, err := cache.InitServer(ctx, cfg.Session)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.redis = rdb
		store = rdb
	} else {
		logger.Warn("session redis is not configured, using in-memory storage")
		store = cache.NewMemory()
	}

	a.nav = navigator.NewRecorder("/", logger)
	a.session = session.New(store, logger)

	api := apiclient.New(apiclient.Options{
		BaseURL:           cfg.BaseURL,
		Timeout:           cfg.API.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.API.Burst,
	}, a.session, a.nav, logger)
	ep := api.Endpoints()

	subscriptionService := subscription.NewSubscriptionService(api, ep, logger, cfg.PremiumPackageID)
	reportsService := reports.New(api, ep, logger)
	usersService := users.New(api, ep, logger)

	a.manager = adbenefits.New(subscriptionService, a.session, cfg.AdBenefits, logger)

	pingURL, err := ep.URL(endpoints.Ping)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.monitor = netstatus.NewMonitor(pingURL, cfg.NetStatus, logger)
	a.notice = netstatus.NewNotice(a.nav, cfg.NetStatus, logger)

	moviesService := movies.New(api, ep, logger)

	reportsTable := admin.NewTable(reportsService.List, admin.ReportID, admin.NewQuery("createdAt"))
	usersTable := admin.NewTable(usersService.List, admin.UserID, admin.NewQuery("createdAt"))
	moviesTable := admin.NewTable(moviesService.List, admin.MovieID, admin.NewQuery("createdAt"))
	subscriptionsTable := admin.NewTable(subscriptionService.ListPremiumSubscriptions, admin.SubscriptionID, admin.NewQuery("startDate"))
	bulk := admin.NewBulk(logger)

	a.patchUsers = push.PatchUsers(usersTable, logger)
	if cfg.AMQPURL != "" {
		if err := a.connectAMQP(ctx); err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if cfg.Push.Enabled {
		a.listener = push.NewListener(cfg.Push, a.session, logger)
		a.listener.Handle(push.TypeUserUpdated, a.patchUsers)
		if a.publisher != nil {
			a.listener.WithPublisher(a.publisher)
		}
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg.RateLimiter, Deps{
		Session:      a.session,
		Manager:      a.manager,
		Monitor:      a.monitor,
		Notice:       a.notice,
		ReportsTable: reportsTable,
		UsersTable:   usersTable,
		ReportsBulk:  &ReportsBulk{bulk: bulk, svc: reportsService, table: reportsTable},
		UsersBulk:    &UsersBulk{bulk: bulk, svc: usersService, table: usersTable},

		MoviesTable:        moviesTable,
		SubscriptionsTable: subscriptionsTable,

		Reports:       reportsService,
		Roles:         roles.New(api, ep, logger),
		Dashboard:     dashboard.New(api, ep, logger),
		Ratings:       ratings.New(api, ep, logger),
		WatchLater:    watchlater.New(api, ep, logger),
		Notifications: notifications.New(api, ep, logger),
		UserStats:     userstats.New(api, ep, logger),
	})

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return a, nil
}

func (a *App) connectAMQP(ctx context.Context) error {
	conn, err := rabbitmq.Connect(ctx, a.cfg.AMQPURL, a.cfg.AMQPMaxRetries, a.cfg.AMQPRetryDelay)
	if err != nil {
		return err
	}
	ch, err := rabbitmq.SetupChannel(conn, a.cfg.Exchange, rabbitmq.ConsoleQueues())
	if err != nil {
		conn.Close()
		return err
	}
	a.amqpConn = conn
	a.publisher = rabbitmq.NewPublisher(ch, a.cfg.Exchange)
	a.logger.Info("push events are forwarded to rabbitmq", slog.String("exchange", a.cfg.Exchange))
	return nil
}

// consumeUserUpdates получает события user_updated, пересланные другими
// процессами консоли, когда собственный websocket-канал отключён.
func (a *App) consumeUserUpdates(ctx context.Context) {
	ch, err := a.amqpConn.Channel()
	if err != nil {
		a.logger.Error("failed to open amqp channel", sl.Err(err))
		return
	}
	defer ch.Close()

	queue, err := rabbitmq.DeclareReplicaQueue(ch, a.cfg.Exchange, push.TypeUserUpdated)
	if err != nil {
		a.logger.Error("failed to declare replica queue", sl.Err(err))
		return
	}
	a.logger.Info("consuming user updates from rabbitmq", slog.String("queue", queue))
	if err := rabbitmq.Consume(ctx, ch, queue, consumerWorkers, push.FromBroker(a.patchUsers, a.logger), a.logger); err != nil {
		a.logger.Error("broker consumer stopped", sl.Err(err))
	}
}

// Run запускает фоновые компоненты и HTTP-сервер. Блокируется до отмены ctx
// или ошибки сервера.
func (a *App) Run(ctx context.Context) error {
	bgCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	goBackground := func(name string, fn func(ctx context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(bgCtx)
			a.logger.Debug("background component stopped", slog.String("component", name))
		}()
	}

	goBackground("session-watch", a.session.Watch)
	goBackground("netstatus-monitor", a.monitor.Run)
	goBackground("netstatus-notice", func(ctx context.Context) { a.notice.Run(ctx, a.monitor) })
	if a.listener != nil {
		goBackground("push-listener", func(ctx context.Context) {
			if err := a.listener.Run(ctx); err != nil {
				a.logger.Error("push listener stopped", sl.Err(err))
			}
		})
	} else if a.amqpConn != nil {
		goBackground("broker-consumer", a.consumeUserUpdates)
	}
	a.manager.Start(bgCtx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
		timeoutCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stop()
		a.logger.Info("shutting down HTTP server gracefully")
		runErr = a.server.Shutdown(timeoutCtx)
	}

	cancel()
	a.manager.Stop()
	wg.Wait()
	a.close()
	return runErr
}

func (a *App) close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("failed to close amqp channel", sl.Err(err))
		}
	}
	if a.amqpConn != nil {
		if err := a.amqpConn.Close(); err != nil {
			a.logger.Warn("failed to close amqp connection", sl.Err(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", sl.Err(err))
		}
	}
}
