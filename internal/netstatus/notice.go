package netstatus

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/moviestream-console/internal/config"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/navigator"
)

// NoticeState состояние баннера сети.
type NoticeState struct {
	Online          bool   `json:"online"`
	Reconnected     bool   `json:"reconnected"`
	RedirectPending bool   `json:"redirectPending"`
	Location        string `json:"location"`
}

// Notice показывает баннер восстановления связи и переводит клиента
// на страницу /offline, если сеть не вернулась за OfflineRedirect.
// После восстановления сети клиент возвращается на маршрут до переадресации.
type Notice struct {
	nav             navigator.Navigator
	reconnectedTTL  time.Duration
	offlineRedirect time.Duration
	log             *slog.Logger

	mu          sync.Mutex
	online      bool
	reconnected bool
	hideTimer   *time.Timer
	offTimer    *time.Timer
	gen         uint64
	returnTo    string
}

// NewNotice создаёт Notice, изначально в состоянии online.
func NewNotice(nav navigator.Navigator, cfg config.NetStatus, log *slog.Logger) *Notice {
	if cfg.ReconnectedTTL <= 0 {
		cfg.ReconnectedTTL = 3 * time.Second
	}
	if cfg.OfflineRedirect <= 0 {
		cfg.OfflineRedirect = 5 * time.Second
	}
	return &Notice{
		nav:             nav,
		reconnectedTTL:  cfg.ReconnectedTTL,
		offlineRedirect: cfg.OfflineRedirect,
		log:             log,
		online:          true,
	}
}

// Run обрабатывает переходы монитора до отмены ctx и останавливает таймеры при выходе.
func (n *Notice) Run(ctx context.Context, mon *Monitor) {
	changes, unsubscribe := mon.Subscribe()
	defer unsubscribe()
	defer n.Stop()

	n.Handle(mon.Online())
	for {
		select {
		case <-ctx.Done():
			return
		case online, ok := <-changes:
			if !ok {
				return
			}
			n.Handle(online)
		}
	}
}

// Handle применяет новое состояние сети.
func (n *Notice) Handle(online bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if online == n.online {
		return
	}
	n.online = online
	n.gen++
	gen := n.gen

	if online {
		stopTimer(&n.offTimer)
		if n.returnTo != "" && n.nav.Location() == navigator.RouteOffline {
			n.nav.Navigate(n.returnTo)
		}
		n.returnTo = ""
		n.reconnected = true
		stopTimer(&n.hideTimer)
		n.hideTimer = time.AfterFunc(n.reconnectedTTL, func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			if n.gen == gen {
				n.reconnected = false
			}
		})
		return
	}

	n.reconnected = false
	stopTimer(&n.hideTimer)
	if n.nav.Location() == navigator.RouteOffline {
		return
	}
	n.offTimer = time.AfterFunc(n.offlineRedirect, func() {
		n.mu.Lock()
		if n.gen != gen {
			n.mu.Unlock()
			return
		}
		n.offTimer = nil
		from := n.nav.Location()
		fire := !n.online && from != navigator.RouteOffline
		if fire {
			n.returnTo = from
		}
		n.mu.Unlock()
		if fire {
			n.log.Warn("network unavailable, redirecting to offline page")
			n.nav.Redirect(navigator.RouteOffline)
		}
	})
}

// State возвращает текущее состояние баннера.
func (n *Notice) State() NoticeState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return NoticeState{
		Online:          n.online,
		Reconnected:     n.reconnected,
		RedirectPending: n.offTimer != nil,
		Location:        n.nav.Location(),
	}
}

// Stop останавливает таймеры.
func (n *Notice) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.gen++
	stopTimer(&n.hideTimer)
	stopTimer(&n.offTimer)
}

func stopTimer(t **time.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}
