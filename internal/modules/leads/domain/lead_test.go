package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToUiLead_BackendColumns(t *testing.T) {
	t.Parallel()

	got := ToUiLead(map[string]any{
		"id":              "l-1",
		"email":           "ada@example.test",
		"company":         "Analytical Engines",
		"tags":            []any{"vip", 1.0},
		"status":          "suppressed",
		"image_key":       "img/l-1.png",
		"last_emailed_at": "2025-01-02T00:00:00Z",
		"last_open_at":    "2025-01-03T00:00:00Z",
		"vars":            map[string]any{"first_name": "Ada"},
		"has_image":       true,
		"created_at":      "2024-12-01T00:00:00Z",
		"vars_completeness": map[string]any{
			"filled": 2.0, "total": 3.0, "missing": []any{"city"}, "percentage": 66.7, "is_complete": false,
		},
	})

	assert.Equal(t, "l-1", got.ID)
	require.NotNil(t, got.CompanyName)
	assert.Equal(t, "Analytical Engines", *got.CompanyName)
	assert.Equal(t, []string{"vip"}, got.Tags)
	assert.Equal(t, StatusSuppressed, got.Status)
	require.NotNil(t, got.ImageKey)
	assert.Equal(t, "img/l-1.png", *got.ImageKey)
	require.NotNil(t, got.LastMailed)
	assert.Equal(t, "2025-01-02T00:00:00Z", *got.LastMailed)
	require.NotNil(t, got.LastOpened)
	assert.Equal(t, map[string]any{"first_name": "Ada"}, got.Vars)
	assert.True(t, got.HasImage)
	assert.Equal(t, "2024-12-01T00:00:00Z", got.CreatedAt)
	require.NotNil(t, got.VarsCompleteness)
	assert.Equal(t, []string{"city"}, got.VarsCompleteness.Missing)
	assert.Equal(t, 2, got.VarsCompleteness.Filled)
}

func TestToUiLead_Defaults(t *testing.T) {
	t.Parallel()

	got := ToUiLead(nil)

	assert.Equal(t, StatusActive, got.Status)
	assert.Equal(t, []string{}, got.Tags)
	assert.Equal(t, map[string]any{}, got.Vars)
	assert.Nil(t, got.CompanyName)
	assert.Nil(t, got.VarsCompleteness)
}

func TestToUiLeadsPage(t *testing.T) {
	t.Parallel()

	page := ToUiLeadsPage(map[string]any{"items": []any{map[string]any{"id": "a"}}, "total": 120.0})
	assert.Equal(t, 120, page.Total)
	require.Len(t, page.Items, 1)

	assert.Equal(t, 0, ToUiLeadsPage(nil).Total)
	assert.NotNil(t, ToUiLeadsPage(nil).Items)
}

func TestStatusBadgeFor(t *testing.T) {
	t.Parallel()

	cases := map[string]StatusBadge{
		"active":     {Label: "Actief", Tone: ToneSuccess},
		"suppressed": {Label: "Onderdrukt", Tone: ToneWarning},
		"bounced":    {Label: "Bounced", Tone: ToneDestructive},
		"archived":   {Label: "archived", Tone: ToneDefault},
	}
	for status, want := range cases {
		assert.Equal(t, want, StatusBadgeFor(status), status)
	}
}

func TestLeadsQueryParams(t *testing.T) {
	t.Parallel()

	defaults := LeadsQuery{}.Params()
	assert.Equal(t, 1, defaults["page"])
	assert.Equal(t, 25, defaults["page_size"])
	assert.NotContains(t, defaults, "search")

	hasImage := true
	params := LeadsQuery{Search: " ada ", Status: []string{"active", "bounced"}, HasImage: &hasImage, Page: 3, Limit: 50, SortBy: "email"}.Params()
	assert.Equal(t, "ada", params["search"])
	assert.Equal(t, []string{"active", "bounced"}, params["status"])
	assert.Equal(t, &hasImage, params["has_image"])
	assert.Equal(t, 3, params["page"])
	assert.Equal(t, 50, params["page_size"])
	assert.Equal(t, "email", params["sort_by"])
}

func TestToImportPreview(t *testing.T) {
	t.Parallel()

	got := ToImportPreview(map[string]any{
		"headers":    []any{"email", "company"},
		"rows":       []any{[]any{"a@x.test", "X"}, "bad"},
		"duplicates": []any{1.0, "oops"},
	})

	assert.Equal(t, []string{"email", "company"}, got.Headers)
	assert.Equal(t, [][]any{{"a@x.test", "X"}, {}}, got.Rows)
	assert.Equal(t, []int{1}, got.Duplicates)
}
