package domain

import (
	"strings"

	"outreachDesk/internal/shared/normalization"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 25

	StatusActive     = "active"
	StatusSuppressed = "suppressed"
	StatusBounced    = "bounced"
)

// VarsCompleteness is the backend's summary of how many template variables a lead fills.
type VarsCompleteness struct {
	Filled     int      `json:"filled"`
	Total      int      `json:"total"`
	Missing    []string `json:"missing"`
	Percentage float64  `json:"percentage"`
	IsComplete bool     `json:"isComplete"`
}

// Lead is the normalized lead model.
type Lead struct {
	ID               string            `json:"id"`
	Email            string            `json:"email"`
	CompanyName      *string           `json:"companyName,omitempty"`
	Domain           *string           `json:"domain,omitempty"`
	URL              *string           `json:"url,omitempty"`
	Tags             []string          `json:"tags"`
	Status           string            `json:"status"`
	LastMailed       *string           `json:"lastMailed,omitempty"`
	LastOpened       *string           `json:"lastOpened,omitempty"`
	ImageKey         *string           `json:"imageKey,omitempty"`
	ListName         *string           `json:"listName,omitempty"`
	Vars             map[string]any    `json:"vars"`
	Stopped          bool              `json:"stopped"`
	DeletedAt        *string           `json:"deletedAt,omitempty"`
	CreatedAt        string            `json:"createdAt"`
	UpdatedAt        string            `json:"updatedAt"`
	HasReport        bool              `json:"hasReport"`
	HasImage         bool              `json:"hasImage"`
	VarsCompleteness *VarsCompleteness `json:"varsCompleteness,omitempty"`
	IsComplete       bool              `json:"isComplete"`
	IsDeleted        bool              `json:"isDeleted"`
}

// LeadsPage is one page of leads.
type LeadsPage struct {
	Items []Lead `json:"items"`
	Total int    `json:"total"`
}

// ToUiLead normalizes a lead payload.
func ToUiLead(raw any) Lead {
	data := normalization.AsMap(raw)

	lead := Lead{
		ID:          normalization.PickString(data, []string{"id"}, ""),
		Email:       normalization.PickString(data, []string{"email"}, ""),
		CompanyName: normalization.PickOptionalString(data, "companyName", "company_name", "company"),
		Domain:      normalization.PickOptionalString(data, "domain"),
		URL:         normalization.PickOptionalString(data, "url"),
		Tags:        normalization.PickStringSlice(data, "tags"),
		Status:      normalization.PickString(data, []string{"status"}, StatusActive),
		LastMailed:  normalization.PickOptionalString(data, "lastMailed", "last_emailed_at", "last_mailed_at"),
		LastOpened:  normalization.PickOptionalString(data, "lastOpened", "last_open_at", "last_opened_at"),
		ImageKey:    normalization.PickOptionalString(data, "imageKey", "image_key"),
		ListName:    normalization.PickOptionalString(data, "listName", "list_name"),
		Vars:        normalization.PickMap(data, "vars"),
		Stopped:     normalization.PickBool(data, []string{"stopped"}, false),
		DeletedAt:   normalization.PickOptionalString(data, "deletedAt", "deleted_at"),
		CreatedAt:   normalization.PickString(data, []string{"createdAt", "created_at"}, ""),
		UpdatedAt:   normalization.PickString(data, []string{"updatedAt", "updated_at"}, ""),
		HasReport:   normalization.PickBool(data, []string{"hasReport", "has_report"}, false),
		HasImage:    normalization.PickBool(data, []string{"hasImage", "has_image"}, false),
		IsComplete:  normalization.PickBool(data, []string{"isComplete", "is_complete"}, false),
		IsDeleted:   normalization.PickBool(data, []string{"isDeleted", "is_deleted"}, false),
	}

	if completeness, ok := normalization.Pick(data, []string{"varsCompleteness", "vars_completeness"}, nil).(map[string]any); ok {
		lead.VarsCompleteness = &VarsCompleteness{
			Filled:     normalization.PickInt(completeness, []string{"filled"}, 0),
			Total:      normalization.PickInt(completeness, []string{"total"}, 0),
			Missing:    normalization.PickStringSlice(completeness, "missing"),
			Percentage: normalization.PickFloat(completeness, []string{"percentage"}, 0),
			IsComplete: normalization.PickBool(completeness, []string{"isComplete", "is_complete"}, false),
		}
	}

	return lead
}

// ToUiLeadsPage normalizes a paginated leads response.
func ToUiLeadsPage(raw any) LeadsPage {
	items := normalization.AsArray(normalization.Pick(raw, []string{"items"}, nil), nil)

	page := LeadsPage{
		Items: make([]Lead, 0, len(items)),
		Total: normalization.PickInt(raw, []string{"total"}, len(items)),
	}
	for _, item := range items {
		page.Items = append(page.Items, ToUiLead(item))
	}
	return page
}

// Tone is the visual weight of a status badge.
type Tone string

const (
	ToneSuccess     Tone = "success"
	ToneWarning     Tone = "warning"
	ToneDestructive Tone = "destructive"
	ToneDefault     Tone = "default"
)

// StatusBadge is the display label of a lead status.
type StatusBadge struct {
	Label string `json:"label"`
	Tone  Tone   `json:"tone"`
}

// StatusBadgeFor maps a backend lead status to its badge. Unknown statuses keep their raw text.
func StatusBadgeFor(status string) StatusBadge {
	switch status {
	case StatusActive:
		return StatusBadge{Label: "Actief", Tone: ToneSuccess}
	case StatusSuppressed:
		return StatusBadge{Label: "Onderdrukt", Tone: ToneWarning}
	case StatusBounced:
		return StatusBadge{Label: "Bounced", Tone: ToneDestructive}
	default:
		return StatusBadge{Label: status, Tone: ToneDefault}
	}
}

// LeadsQuery filters the leads listing.
type LeadsQuery struct {
	Search    string
	TLD       []string
	Status    []string
	Tags      []string
	HasImage  *bool
	HasVars   *bool
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// Params maps the query onto backend parameter names. Nil values are skipped by the query builder.
func (q LeadsQuery) Params() map[string]any {
	page, limit := q.Page, q.Limit
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}

	params := map[string]any{
		"page":      page,
		"page_size": limit,
		"has_image": q.HasImage,
		"has_vars":  q.HasVars,
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		params["search"] = search
	}
	if len(q.Status) > 0 {
		params["status"] = q.Status
	}
	if len(q.Tags) > 0 {
		params["tags"] = q.Tags
	}
	if len(q.TLD) > 0 {
		params["tld"] = q.TLD
	}
	if q.SortBy != "" {
		params["sort_by"] = q.SortBy
	}
	if q.SortOrder != "" {
		params["sort_order"] = q.SortOrder
	}
	return params
}

// ImportPreview is the backend's parse of an uploaded CSV before import.
type ImportPreview struct {
	Headers    []string `json:"headers"`
	Rows       [][]any  `json:"rows"`
	Duplicates []int    `json:"duplicates"`
}

// ToImportPreview normalizes an import preview payload.
func ToImportPreview(raw any) ImportPreview {
	data := normalization.AsMap(raw)

	rows := normalization.AsArray(data["rows"], nil)
	duplicates := normalization.AsArray(data["duplicates"], nil)
	preview := ImportPreview{
		Headers:    normalization.PickStringSlice(data, "headers"),
		Rows:       make([][]any, 0, len(rows)),
		Duplicates: make([]int, 0, len(duplicates)),
	}
	for _, row := range rows {
		preview.Rows = append(preview.Rows, normalization.AsArray(row, nil))
	}
	for _, index := range duplicates {
		if n := normalization.AsInt(index, -1); n >= 0 {
			preview.Duplicates = append(preview.Duplicates, n)
		}
	}
	return preview
}

// ImportMapping maps CSV columns to lead fields. A nil target ignores the column.
type ImportMapping map[string]*string
