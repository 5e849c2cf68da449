package domain

import (
	"errors"
	"strings"
	"unicode/utf8"

	"outreachDesk/internal/shared/normalization"
)

// Backend business defaults. These must track the backend's own defaults.
const (
	DefaultTimezone        = "Europe/Amsterdam"
	DefaultWindowFrom      = "08:00"
	DefaultWindowTo        = "17:00"
	DefaultEmailsPer       = 1
	DefaultThrottleMinutes = 20
	DefaultUnsubscribeText = "Uitschrijven"
	DefaultTransport       = "SMTP"

	maxUnsubscribeTextLen = 50
)

var (
	ErrEmptyUpdate            = errors.New("settings update has no fields")
	ErrInvalidUnsubscribeText = errors.New("unsubscribe text must be between 1 and 50 characters")
)

// SendingWindow is the daily interval in which campaign mail may go out.
type SendingWindow struct {
	Days []string `json:"days"`
	From string   `json:"from"`
	To   string   `json:"to"`
}

// Throttle limits sending to EmailsPer messages every Minutes minutes.
type Throttle struct {
	EmailsPer int `json:"emailsPer"`
	Minutes   int `json:"minutes"`
}

// DNSStatus reports which sender authentication records are in place.
type DNSStatus struct {
	SPF   bool `json:"spf"`
	DKIM  bool `json:"dkim"`
	DMARC bool `json:"dmarc"`
}

// EmailInfrastructure describes the active mail transport.
type EmailInfrastructure struct {
	Current         string    `json:"current"`
	Provider        *string   `json:"provider"`
	ProviderEnabled bool      `json:"providerEnabled"`
	DNS             DNSStatus `json:"dns"`
}

// Settings is the fully defaulted settings model consumed by the dashboard.
type Settings struct {
	Timezone             string              `json:"timezone"`
	Window               SendingWindow       `json:"window"`
	Throttle             Throttle            `json:"throttle"`
	Domains              []string            `json:"domains"`
	UnsubscribeText      string              `json:"unsubscribeText"`
	UnsubscribeURL       string              `json:"unsubscribeUrl"`
	TrackingPixelEnabled bool                `json:"trackingPixelEnabled"`
	EmailInfra           EmailInfrastructure `json:"emailInfra"`
	GracePeriodTo        *string             `json:"gracePeriodTo,omitempty"`
	DailyCapPerDomain    *int                `json:"dailyCapPerDomain,omitempty"`
	TimezoneEditable     *bool               `json:"timezoneEditable,omitempty"`
}

// ToUiSettings converts an arbitrary settings payload into Settings.
// Missing containers degrade to defaults; it never fails.
func ToUiSettings(raw any) Settings {
	data := normalization.AsMap(raw)

	windowData := normalization.PickMap(data, "window")
	window := SendingWindow{
		Days: normalization.PickStringSlice(windowData, "days"),
		From: orDefault(normalization.PickString(windowData, []string{"from"}, ""), DefaultWindowFrom),
		To:   orDefault(normalization.PickString(windowData, []string{"to"}, ""), DefaultWindowTo),
	}

	throttleData := normalization.PickMap(data, "throttle")
	throttle := Throttle{
		EmailsPer: normalization.PickInt(throttleData, []string{"emailsPer", "emails_per"}, DefaultEmailsPer),
		Minutes:   normalization.PickInt(throttleData, []string{"minutes"}, DefaultThrottleMinutes),
	}

	infraData := normalization.PickMap(data, "emailInfra", "email_infra")
	dnsData := normalization.PickMap(infraData, "dns")
	infra := EmailInfrastructure{
		Current:         orDefault(normalization.PickString(infraData, []string{"current"}, ""), DefaultTransport),
		ProviderEnabled: normalization.PickBool(infraData, []string{"providerEnabled", "provider_enabled"}, false),
		DNS: DNSStatus{
			SPF:   normalization.PickBool(dnsData, []string{"spf"}, false),
			DKIM:  normalization.PickBool(dnsData, []string{"dkim"}, false),
			DMARC: normalization.PickBool(dnsData, []string{"dmarc"}, false),
		},
	}
	if provider := normalization.PickString(infraData, []string{"provider"}, ""); provider != "" {
		infra.Provider = &provider
	}

	return Settings{
		Timezone:             orDefault(normalization.PickString(data, []string{"timezone"}, ""), DefaultTimezone),
		Window:               window,
		Throttle:             throttle,
		Domains:              normalization.PickStringSlice(data, "domains"),
		UnsubscribeText:      normalization.PickString(data, []string{"unsubscribeText", "unsubscribe_text"}, DefaultUnsubscribeText),
		UnsubscribeURL:       normalization.PickString(data, []string{"unsubscribeUrl", "unsubscribe_url"}, ""),
		TrackingPixelEnabled: normalization.PickBool(data, []string{"trackingPixelEnabled", "tracking_pixel_enabled"}, true),
		EmailInfra:           infra,
		GracePeriodTo:        normalization.PickOptionalString(data, "gracePeriodTo", "grace_period_to"),
		DailyCapPerDomain:    normalization.PickOptionalInt(data, "dailyCapPerDomain", "daily_cap_per_domain"),
		TimezoneEditable:     normalization.PickOptionalBool(data, "timezoneEditable", "timezone_editable"),
	}
}

// SettingsUpdate carries the fields the dashboard may change.
type SettingsUpdate struct {
	UnsubscribeText      *string `json:"unsubscribeText,omitempty"`
	TrackingPixelEnabled *bool   `json:"trackingPixelEnabled,omitempty"`
}

// Validate applies the backend's constraints before the request is sent and
// returns the update with a trimmed unsubscribe text.
func (u SettingsUpdate) Validate() (SettingsUpdate, error) {
	if u.UnsubscribeText == nil && u.TrackingPixelEnabled == nil {
		return u, ErrEmptyUpdate
	}
	if u.UnsubscribeText != nil {
		trimmed := strings.TrimSpace(*u.UnsubscribeText)
		if n := utf8.RuneCountInString(trimmed); n < 1 || n > maxUnsubscribeTextLen {
			return u, ErrInvalidUnsubscribeText
		}
		u.UnsubscribeText = &trimmed
	}
	return u, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
