// Package subscription содержит операции с премиум-подписками:
// пакеты, текущая подписка пользователя, рекламные привилегии и
// администрирование подписок.
package subscription

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/magabrotheeeer/moviestream-console/internal/apiclient"
	"github.com/magabrotheeeer/moviestream-console/internal/endpoints"
	"github.com/magabrotheeeer/moviestream-console/internal/lib/sl"
	"github.com/magabrotheeeer/moviestream-console/internal/models"
)

// DefaultPremiumPackageID пакет, который всегда скрывает рекламу.
const DefaultPremiumPackageID = "premium_no_ads"

// SubscriptionService реализует обращения к API подписок.
type SubscriptionService struct {
	api       apiclient.Doer
	ep        *endpoints.Registry
	log       *slog.Logger
	premiumID string
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
// Пустой premiumID заменяется на DefaultPremiumPackageID.
func NewSubscriptionService(api apiclient.Doer, ep *endpoints.Registry, log *slog.Logger, premiumID string) *SubscriptionService {
	if premiumID == "" {
		premiumID = DefaultPremiumPackageID
	}
	return &SubscriptionService{
		api:       api,
		ep:        ep,
		log:       log,
		premiumID: premiumID,
	}
}

// PremiumPackageID возвращает идентификатор пакета без рекламы.
func (s *SubscriptionService) PremiumPackageID() string {
	return s.premiumID
}

// ApplyPremiumOverride включает оба флага скрытия рекламы, если тип пакета
// совпадает с premiumID, независимо от флагов, пришедших с бэкенда.
func ApplyPremiumOverride(b models.AdBenefits, premiumID string) models.AdBenefits {
	if premiumID != "" && b.PackageType == premiumID {
		b.HideHomepageAds = true
		b.HideVideoAds = true
	}
	return b
}

// adBenefitsPayload ответ бэкенда. Тип пакета может прийти на верхнем уровне
// или внутри объекта подписки/пакета.
type adBenefitsPayload struct {
	models.AdBenefits
	Subscription *struct {
		PackageType string `json:"packageType"`
		IsActive    bool   `json:"isActive"`
	} `json:"subscription,omitempty"`
	Package *struct {
		Type string `json:"type"`
	} `json:"package,omitempty"`
}

func (p adBenefitsPayload) benefits() models.AdBenefits {
	b := p.AdBenefits
	if b.PackageType == "" && p.Subscription != nil {
		b.PackageType = p.Subscription.PackageType
		b.HasActiveSubscription = b.HasActiveSubscription || p.Subscription.IsActive
	}
	if b.PackageType == "" && p.Package != nil {
		b.PackageType = p.Package.Type
	}
	return b
}

// GetUserAdBenefits возвращает рекламные привилегии текущего пользователя.
func (s *SubscriptionService) GetUserAdBenefits(ctx context.Context) (models.AdBenefits, error) {
	const op = "subscription.GetUserAdBenefits"
	payload, err := apiclient.Call[adBenefitsPayload](ctx, s.api, http.MethodGet, s.ep.MustPath(endpoints.AdBenefits), nil, nil)
	if err != nil {
		s.log.Error("failed to get ad benefits", slog.String("op", op), sl.Err(err))
		return models.AdBenefits{}, err
	}
	return ApplyPremiumOverride(payload.benefits(), s.premiumID), nil
}

// GetPackages возвращает доступные пакеты подписки.
func (s *SubscriptionService) GetPackages(ctx context.Context) ([]models.Package, error) {
	const op = "subscription.GetPackages"
	pkgs, err := apiclient.Call[[]models.Package](ctx, s.api, http.MethodGet, s.ep.MustPath(endpoints.Packages), nil, nil)
	if err != nil {
		s.log.Error("failed to get packages", slog.String("op", op), sl.Err(err))
		return nil, err
	}
	return pkgs, nil
}

// GetCurrentSubscription возвращает активную подписку. Отсутствие подписки (404)
// не считается ошибкой и даёт nil.
func (s *SubscriptionService) GetCurrentSubscription(ctx context.Context) (*models.Subscription, error) {
	const op = "subscription.GetCurrentSubscription"
	sub, err := apiclient.Call[*models.Subscription](ctx, s.api, http.MethodGet, s.ep.MustPath(endpoints.CurrentSubscription), nil, nil)
	if apiclient.IsKind(err, apiclient.KindNotFound) {
		return nil, nil
	}
	if err != nil {
		s.log.Error("failed to get current subscription", slog.String("op", op), sl.Err(err))
		return nil, err
	}
	return sub, nil
}

// Subscribe оформляет подписку на пакет packageID.
func (s *SubscriptionService) Subscribe(ctx context.Context, packageID string) (*models.Subscription, error) {
	const op = "subscription.Subscribe"
	body := map[string]string{"packageId": packageID}
	sub, err := apiclient.Call[*models.Subscription](ctx, s.api, http.MethodPost, s.ep.MustPath(endpoints.Subscribe), nil, body)
	if err != nil {
		s.log.Error("failed to subscribe", slog.String("op", op), slog.String("package_id", packageID), sl.Err(err))
		return nil, err
	}
	s.log.Info("subscribed to package", slog.String("package_id", packageID))
	return sub, nil
}

// Cancel отменяет текущую подписку.
func (s *SubscriptionService) Cancel(ctx context.Context) error {
	const op = "subscription.Cancel"
	if _, err := s.api.Do(ctx, http.MethodPost, s.ep.MustPath(endpoints.CancelSubscription), nil, nil); err != nil {
		s.log.Error("failed to cancel subscription", slog.String("op", op), sl.Err(err))
		return err
	}
	return nil
}

// ListPremiumSubscriptions возвращает страницу премиум-подписок для админ-консоли.
func (s *SubscriptionService) ListPremiumSubscriptions(ctx context.Context, query url.Values) (models.Page[models.PremiumSubscription], error) {
	const op = "subscription.ListPremiumSubscriptions"
	raw, err := s.api.Do(ctx, http.MethodGet, s.ep.MustPath(endpoints.PremiumSubscriptions), query, nil)
	if err != nil {
		s.log.Error("failed to list premium subscriptions", slog.String("op", op), sl.Err(err))
		return models.Page[models.PremiumSubscription]{}, err
	}
	return apiclient.DecodePage[models.PremiumSubscription](raw, "subscriptions")
}

// UpdatePremiumStatus меняет статус премиум-подписки.
func (s *SubscriptionService) UpdatePremiumStatus(ctx context.Context, id, status string) (models.PremiumSubscription, error) {
	const op = "subscription.UpdatePremiumStatus"
	path, err := s.ep.Path(endpoints.PremiumStatus, id)
	if err != nil {
		return models.PremiumSubscription{}, err
	}
	res, err := apiclient.Call[models.PremiumSubscription](ctx, s.api, http.MethodPatch, path, nil, map[string]string{"status": status})
	if err != nil {
		s.log.Error("failed to update premium subscription status", slog.String("op", op), slog.String("id", id), sl.Err(err))
		return models.PremiumSubscription{}, err
	}
	return res, nil
}
