package domain

import "outreachDesk/internal/shared/normalization"

// GlobalStats aggregates sending results over the selected period.
type GlobalStats struct {
	TotalSent  int     `json:"totalSent"`
	TotalOpens int     `json:"totalOpens"`
	OpenRate   float64 `json:"openRate"`
	Bounces    int     `json:"bounces"`
}

// TimelinePoint is one day of the sending timeline.
type TimelinePoint struct {
	Date  string `json:"date"`
	Sent  int    `json:"sent"`
	Opens int    `json:"opens"`
}

// DomainStats breaks results down per recipient domain.
type DomainStats struct {
	Domain   string  `json:"domain"`
	Sent     int     `json:"sent"`
	OpenRate float64 `json:"openRate"`
	Bounces  int     `json:"bounces"`
}

// CampaignStats breaks results down per campaign.
type CampaignStats struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Sent     int     `json:"sent"`
	OpenRate float64 `json:"openRate"`
	Bounces  int     `json:"bounces"`
}

// Summary is the statistics page model.
type Summary struct {
	Global    GlobalStats     `json:"global"`
	Timeline  []TimelinePoint `json:"timeline"`
	Domains   []DomainStats   `json:"domains"`
	Campaigns []CampaignStats `json:"campaigns"`
}

var (
	sentKeys     = []string{"sent", "totalSent", "total_sent"}
	openRateKeys = []string{"openRate", "open_rate"}
	bouncesKeys  = []string{"bounces", "total_bounces"}
)

// ToUiStatsSummary normalizes a stats summary payload. Non-array sections become empty lists.
func ToUiStatsSummary(raw any) Summary {
	data := normalization.AsMap(raw)
	globalData := normalization.PickMap(data, "global")

	summary := Summary{
		Global: GlobalStats{
			TotalSent:  normalization.PickInt(globalData, []string{"totalSent", "total_sent", "sent"}, 0),
			TotalOpens: normalization.PickInt(globalData, []string{"totalOpens", "total_opens", "opens"}, 0),
			OpenRate:   normalization.PickFloat(globalData, openRateKeys, 0),
			Bounces:    normalization.PickInt(globalData, bouncesKeys, 0),
		},
	}

	timeline := normalization.AsArray(data["timeline"], nil)
	summary.Timeline = make([]TimelinePoint, 0, len(timeline))
	for _, point := range timeline {
		summary.Timeline = append(summary.Timeline, TimelinePoint{
			Date:  normalization.PickString(point, []string{"date"}, ""),
			Sent:  normalization.PickInt(point, []string{"sent", "count", "totalSent", "total_sent"}, 0),
			Opens: normalization.PickInt(point, []string{"opens", "totalOpens", "total_opens"}, 0),
		})
	}

	domains := normalization.AsArray(data["domains"], nil)
	summary.Domains = make([]DomainStats, 0, len(domains))
	for _, domain := range domains {
		summary.Domains = append(summary.Domains, DomainStats{
			Domain:   normalization.PickString(domain, []string{"domain", "name"}, ""),
			Sent:     normalization.PickInt(domain, sentKeys, 0),
			OpenRate: normalization.PickFloat(domain, openRateKeys, 0),
			Bounces:  normalization.PickInt(domain, bouncesKeys, 0),
		})
	}

	campaigns := normalization.AsArray(data["campaigns"], nil)
	summary.Campaigns = make([]CampaignStats, 0, len(campaigns))
	for _, campaign := range campaigns {
		summary.Campaigns = append(summary.Campaigns, CampaignStats{
			ID:       normalization.PickString(campaign, []string{"id", "campaign_id"}, ""),
			Name:     normalization.PickString(campaign, []string{"name", "campaign_name"}, ""),
			Sent:     normalization.PickInt(campaign, sentKeys, 0),
			OpenRate: normalization.PickFloat(campaign, openRateKeys, 0),
			Bounces:  normalization.PickInt(campaign, bouncesKeys, 0),
		})
	}

	return summary
}

// StatsQuery filters the summary and export endpoints. Dates use YYYY-MM-DD.
type StatsQuery struct {
	From       string
	To         string
	TemplateID string
}

// Params maps the query onto backend parameter names; blank values are omitted.
func (q StatsQuery) Params() map[string]any {
	params := map[string]any{}
	setIfPresent(params, "from_date", q.From)
	setIfPresent(params, "to_date", q.To)
	setIfPresent(params, "template_id", q.TemplateID)
	return params
}

// ExportScope selects which breakdown is exported.
type ExportScope string

const (
	ExportScopeGlobal   ExportScope = "global"
	ExportScopeDomain   ExportScope = "domain"
	ExportScopeCampaign ExportScope = "campaign"
)

// StatsExportQuery selects an export; ID narrows domain or campaign exports.
type StatsExportQuery struct {
	StatsQuery
	Scope ExportScope
	ID    string
}

// Params maps the export query onto backend parameter names.
func (q StatsExportQuery) Params() map[string]any {
	params := q.StatsQuery.Params()
	scope := q.Scope
	if scope == "" {
		scope = ExportScopeGlobal
	}
	params["scope"] = string(scope)
	setIfPresent(params, "id", q.ID)
	return params
}

func setIfPresent(params map[string]any, key, value string) {
	if value != "" {
		params[key] = value
	}
}
