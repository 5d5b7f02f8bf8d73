// Package adbenefits управляет рекламными привилегиями текущего пользователя.
//
// Manager загружает привилегии при входе пользователя, периодически
// обновляет их и сбрасывает при выходе. Ошибки загрузки повторяются по общей
// политике: ошибки авторизации с фиксированной паузой, остальные
// с экспоненциальной задержкой.
package adbenefits

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/moviestream-console/internal/apiclient"
	"github.com/magabrotheeeer/moviestream-console/internal/config"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/retry"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/sl"
	"github.com/magabrotheeeer/moviestream-console/internal/metrics"
	"github.com/magabrotheeeer/moviestream-console/internal/models"
	"github.com/magabrotheeeer/moviestream-console/internal/services/subscription"
	"github.com/magabrotheeeer/moviestream-console/internal/session"
)

// State состояние менеджера.
type State int

// Состояния менеджера.
const (
	Uninitialized State = iota
	Loading
	Ready
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "uninitialized"
	}
}

// MarshalText отдаёт состояние строкой в JSON-ответах.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Fetcher загружает привилегии с бэкенда.
type Fetcher interface {
	GetUserAdBenefits(ctx context.Context) (models.AdBenefits, error)
}

// AuthSource сообщает о состоянии авторизации и его изменениях.
type AuthSource interface {
	Authenticated(ctx context.Context) bool
	Subscribe() (<-chan session.Change, func())
}

// Snapshot состояние менеджера на момент вызова.
type Snapshot struct {
	State         State             `json:"state"`
	Authenticated bool              `json:"authenticated"`
	Benefits      models.AdBenefits `json:"benefits"`
	LastError     string            `json:"lastError,omitempty"`
	UpdatedAt     time.Time         `json:"updatedAt,omitempty"`
}

// Manager хранит привилегии и поддерживает их актуальность.
type Manager struct {
	fetcher Fetcher
	auth    AuthSource
	cfg     config.AdBenefits
	log     *slog.Logger
	policy  *retry.Policy
	now     func() time.Time

	mu            sync.RWMutex
	fetching      bool
	rerun         bool
	state         State
	authenticated bool
	benefits      models.AdBenefits
	lastErr       error
	updatedAt     time.Time
	gen           uint64
	stopped       bool
	ctx           context.Context
	cancel        context.CancelFunc
	fetchCancel   context.CancelFunc

	wg sync.WaitGroup
}

// New создаёт менеджер. Нулевые значения cfg заменяются значениями по умолчанию,
// отрицательный MaxRetries снимает ограничение на число повторов.
func New(fetcher Fetcher, auth AuthSource, cfg config.AdBenefits, log *slog.Logger) *Manager {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 15 * time.Minute
	}
	if cfg.AuthRetryDelay <= 0 {
		cfg.AuthRetryDelay = 2 * time.Second
	}
	if cfg.NetworkRetryBase <= 0 {
		cfg.NetworkRetryBase = time.Second
	}
	if cfg.PremiumPackageID == "" {
		cfg.PremiumPackageID = subscription.DefaultPremiumPackageID
	}

	m := &Manager{
		fetcher: fetcher,
		auth:    auth,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
	m.policy = &retry.Policy{
		MaxRetries: cfg.MaxRetries,
		Classify:   m.classify,
		OnRetry: func(attempt int, wait time.Duration, err error) {
			m.log.Warn("ad benefits fetch failed, retrying",
				slog.Int("attempt", attempt), slog.Duration("wait", wait), sl.Err(err))
		},
	}
	return m
}

// WithSleep подменяет ожидание между повторами.
func (m *Manager) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *Manager {
	m.policy.WithSleep(sleep)
	return m
}

func (m *Manager) classify(err error) (string, retry.Schedule) {
	switch {
	case apiclient.IsKind(err, apiclient.KindCanceled):
		return "", nil
	case apiclient.IsAuth(err):
		return "auth", retry.Fixed(m.cfg.AuthRetryDelay)
	default:
		return "network", retry.Exponential(m.cfg.NetworkRetryBase, 0)
	}
}

// Start читает текущее состояние авторизации, подписывается на его изменения
// и запускает фоновую работу. Работа прекращается по Stop или отмене ctx.
func (m *Manager) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	changes, unsubscribe := m.auth.Subscribe()
	authed := m.auth.Authenticated(ctx)

	m.mu.Lock()
	m.ctx = ctx
	m.cancel = cancel
	m.mu.Unlock()

	m.wg.Add(1)
	go m.run(ctx, authed, changes, unsubscribe)
}

// Stop останавливает таймер обновления и ожидающие повторы.
// После возврата состояние менеджера больше не меняется.
func (m *Manager) Stop() {
	m.mu.Lock()
	m.stopped = true
	cancel := m.cancel
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

func (m *Manager) run(ctx context.Context, authed bool, changes <-chan session.Change, unsubscribe func()) {
	defer m.wg.Done()
	defer unsubscribe()

	var (
		ticker *time.Ticker
		tick   <-chan time.Time
	)
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
	}
	defer stopTicker()

	apply := func(authed bool) {
		m.setAuthenticated(authed)
		if !authed {
			stopTicker()
			return
		}
		m.trigger(true)
		if ticker == nil {
			ticker = time.NewTicker(m.cfg.RefreshInterval)
			tick = ticker.C
		}
	}
	apply(authed)

	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			apply(c.Authenticated)
		case <-tick:
			m.trigger(false)
		}
	}
}

// setAuthenticated начинает новое поколение состояния. Результаты загрузок
// предыдущего поколения отбрасываются.
func (m *Manager) setAuthenticated(authed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.gen++
	m.authenticated = authed
	if !authed {
		m.benefits = models.AdBenefits{}
		m.lastErr = nil
		m.state = Ready
		if m.fetchCancel != nil {
			m.fetchCancel()
		}
	}
}

// Refresh запускает внеочередную загрузку. Если загрузка уже идёт, вызов игнорируется.
func (m *Manager) Refresh() {
	m.mu.RLock()
	ready := m.ctx != nil && m.authenticated && !m.stopped
	m.mu.RUnlock()
	if ready {
		m.trigger(false)
	}
}

// trigger запускает загрузку, если другая не выполняется. При force идущая
// загрузка отменяется и после её завершения выполняется новая.
func (m *Manager) trigger(force bool) {
	m.mu.Lock()
	if m.fetching {
		if force {
			m.rerun = true
			if m.fetchCancel != nil {
				m.fetchCancel()
			}
		} else {
			m.log.Debug("ad benefits fetch already in flight, skipping")
		}
		m.mu.Unlock()
		return
	}
	if m.stopped || m.ctx == nil {
		m.mu.Unlock()
		return
	}
	fctx, cancel := context.WithCancel(m.ctx)
	m.fetching = true
	m.fetchCancel = cancel
	gen := m.gen
	m.state = Loading
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		defer cancel()
		m.fetch(fctx, gen)

		// завершение и решение о повторе принимаются под одной блокировкой
		m.mu.Lock()
		m.fetching = false
		again := m.rerun && m.authenticated && !m.stopped
		m.rerun = false
		m.mu.Unlock()
		if again {
			m.trigger(false)
		}
	}()
}

func (m *Manager) fetch(ctx context.Context, gen uint64) {
	var benefits models.AdBenefits
	err := m.policy.Do(ctx, func(ctx context.Context) error {
		b, err := m.fetcher.GetUserAdBenefits(ctx)
		if err != nil {
			metrics.BenefitFetches.WithLabelValues("failure").Inc()
			return err
		}
		metrics.BenefitFetches.WithLabelValues("success").Inc()
		benefits = b
		return nil
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped || gen != m.gen {
		return
	}
	m.state = Ready
	if err != nil {
		m.lastErr = err
		m.log.Error("failed to load ad benefits", sl.Err(err))
		return
	}
	m.benefits = subscription.ApplyPremiumOverride(benefits, m.cfg.PremiumPackageID)
	m.lastErr = nil
	m.updatedAt = m.now()
	m.log.Debug("ad benefits updated",
		slog.String("package_type", m.benefits.PackageType),
		slog.Bool("hide_homepage_ads", m.benefits.HideHomepageAds),
		slog.Bool("hide_video_ads", m.benefits.HideVideoAds))
}

// Snapshot возвращает текущее состояние.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := Snapshot{
		State:         m.state,
		Authenticated: m.authenticated,
		Benefits:      m.benefits,
		UpdatedAt:     m.updatedAt,
	}
	if m.lastErr != nil {
		s.LastError = m.lastErr.Error()
	}
	return s
}

// Benefits возвращает привилегии для страницы route. На странице без рекламы
// оба флага скрытия включены независимо от подписки.
func (m *Manager) Benefits(route string) models.AdBenefits {
	m.mu.RLock()
	b := m.benefits
	m.mu.RUnlock()
	if m.IsAdFreeRoute(route) {
		b.HideHomepageAds = true
		b.HideVideoAds = true
	}
	return b
}

// IsAdFreeRoute сообщает, показывается ли на странице route реклама.
func (m *Manager) IsAdFreeRoute(route string) bool {
	return m.cfg.AdFreeRoute != "" && route == m.cfg.AdFreeRoute
}
