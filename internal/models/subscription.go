package models

import "time"

// AdBenefits набор флагов, определяющих скрытие рекламы для пользователя.
type AdBenefits struct {
	HideHomepageAds       bool   `json:"hideHomepageAds"`
	HideVideoAds          bool   `json:"hideVideoAds"`
	PackageType           string `json:"packageType"`
	HasActiveSubscription bool   `json:"hasActiveSubscription"`
}

// Package тарифный пакет премиум-подписки.
type Package struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	Price           float64 `json:"price"`
	DurationDays    int     `json:"durationDays"`
	HideHomepageAds bool    `json:"hideHomepageAds"`
	HideVideoAds    bool    `json:"hideVideoAds"`
}

// Subscription активная подписка текущего пользователя.
type Subscription struct {
	ID          string     `json:"id"`
	PackageID   string     `json:"packageId"`
	PackageType string     `json:"packageType"`
	Status      string     `json:"status"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	AutoRenew   bool       `json:"autoRenew"`
}

// PremiumSubscription строка таблицы премиум-подписок в админ-консоли.
type PremiumSubscription struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	UserEmail   string     `json:"userEmail"`
	PackageName string     `json:"packageName"`
	PackageType string     `json:"packageType"`
	Status      string     `json:"status"`
	Amount      float64    `json:"amount"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
}
