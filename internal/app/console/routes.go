package console

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/moviestream-console/internal/config"
	"github.com/magabrotheeeer/moviestream-console/internal/admin"
	"github.com/magabrotheeeer/moviestream-console/internal/http/handlers/adbenefits/refresh"
	"github.com/magabrotheeeer/moviestream-console/internal/http/handlers/adbenefits/snapshot"
	"github.com/magabrotheeeer/moviestream-console/internal/http/handlers/admin/list"
	"github.com/magabrotheeeer/moviestream-console/internal/http/handlers/admin/reportstatus"
	"github.com/magabrotheeeer/moviestream-console/internal/http/handlers/admin/useractive"
	"github.com/magabrotheeeer/moviestream-console/internal/http/handlers/health"
	"github.com/magabrotheeeer/moviestream-console/internal/http/handlers/network/notify"
	"github.com/magabrotheeeer/moviestream-console/internal/http/handlers/network/status"
	"github.com/magabrotheeeer/moviestream-console/internal/http/handlers/resource"
	"github.com/magabrotheeeer/moviestream-console/internal/http/handlers/session/login"
	"github.com/magabrotheeeer/moviestream-console/internal/http/handlers/session/logout"
	"github.com/magabrotheeeer/moviestream-console/internal/http/middlewarectx"
	"github.com/magabrotheeeer/moviestream-console/internal/models"
)

// RegisterRoutes регистрирует маршруты консоли.
func RegisterRoutes(r chi.Router, logger *slog.Logger, limits config.RateLimiter, d Deps) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, middlewarectx.NewLimiter(limits)))

		r.Get("/health", health.New(logger, d.Monitor).ServeHTTP)

		r.Post("/session", login.New(logger, d.Session).ServeHTTP)
		r.Delete("/session", logout.New(logger, d.Session).ServeHTTP)

		r.Get("/ad-benefits", snapshot.New(logger, d.Manager).ServeHTTP)
		r.Post("/ad-benefits/refresh", refresh.New(logger, d.Manager).ServeHTTP)

		r.Get("/network-status", status.New(logger, d.Notice).ServeHTTP)
		r.Post("/network-status", notify.New(logger, d.Monitor).ServeHTTP)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/reports", list.New[models.Report](logger, d.ReportsTable, "reports").ServeHTTP)
			r.Post("/reports/status", reportstatus.New(logger, d.ReportsBulk, d.ReportsTable).ServeHTTP)
			r.Get("/users", list.New[models.User](logger, d.UsersTable, "users").ServeHTTP)
			r.Post("/users/active", useractive.New(logger, d.UsersBulk).ServeHTTP)
			r.Get("/movies", list.New[models.Movie](logger, d.MoviesTable, "movies").ServeHTTP)
			r.Get("/subscriptions", list.New[models.PremiumSubscription](logger, d.SubscriptionsTable, "subscriptions").
				WithView(func(s models.PremiumSubscription) any { return admin.SubscriptionView(s) }).ServeHTTP)

			r.Get("/reports/stats", resource.New[models.ReportStats](logger, "stats", func(req *http.Request) (models.ReportStats, error) {
				return d.Reports.Stats(req.Context())
			}).ServeHTTP)
			r.Get("/roles", resource.New[[]models.Role](logger, "roles", func(req *http.Request) ([]models.Role, error) {
				return d.Roles.List(req.Context())
			}).ServeHTTP)
			r.Get("/dashboard", resource.New[models.DashboardOverview](logger, "overview", func(req *http.Request) (models.DashboardOverview, error) {
				return d.Dashboard.Overview(req.Context())
			}).ServeHTTP)
		})

		r.Route("/movies/{id}", func(r chi.Router) {
			r.Get("/ratings", resource.New[models.MovieRatings](logger, "ratings", func(req *http.Request) (models.MovieRatings, error) {
				return d.Ratings.GetMovieRatings(req.Context(), chi.URLParam(req, "id"))
			}).ServeHTTP)
			r.Get("/my-rating", resource.New[models.Rating](logger, "rating", func(req *http.Request) (models.Rating, error) {
				return d.Ratings.GetUserRating(req.Context(), chi.URLParam(req, "id"))
			}).ServeHTTP)
		})

		r.Route("/me", func(r chi.Router) {
			r.Get("/stats", resource.New[models.UserStats](logger, "stats", func(req *http.Request) (models.UserStats, error) {
				id, err := d.Session.UserID(req.Context())
				if err != nil {
					return models.UserStats{}, err
				}
				return d.UserStats.Get(req.Context(), id)
			}).ServeHTTP)
			r.Get("/watch-later", resource.New[[]models.WatchLaterItem](logger, "items", func(req *http.Request) ([]models.WatchLaterItem, error) {
				return d.WatchLater.List(req.Context())
			}).ServeHTTP)
			r.Get("/notifications", resource.New[models.Page[models.Notification]](logger, "notifications", func(req *http.Request) (models.Page[models.Notification], error) {
				return d.Notifications.List(req.Context(), req.URL.Query())
			}).ServeHTTP)
			r.Get("/notifications/unread-count", resource.New[int](logger, "count", func(req *http.Request) (int, error) {
				return d.Notifications.UnreadCount(req.Context())
			}).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
