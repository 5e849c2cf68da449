package domain

import (
	"time"

	"outreachDesk/internal/shared/normalization"
)

// VariableSource tells the renderer where a template variable is resolved from.
type VariableSource string

const (
	SourceLead     VariableSource = "lead"
	SourceVars     VariableSource = "vars"
	SourceCampaign VariableSource = "campaign"
	SourceImage    VariableSource = "image"
)

// AssetType distinguishes inline (cid) attachments from hosted images.
type AssetType string

const (
	AssetStatic AssetType = "static"
	AssetCID    AssetType = "cid"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// now is replaced in tests.
var now = time.Now

// Asset is an image or attachment referenced by a template body.
type Asset struct {
	Key  string    `json:"key"`
	Type AssetType `json:"type"`
}

// Variable describes one placeholder in a template.
type Variable struct {
	Key      string         `json:"key"`
	Required bool           `json:"required"`
	Source   VariableSource `json:"source"`
	Example  *string        `json:"example,omitempty"`
}

// Template is the normalized template model.
type Template struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Subject      string     `json:"subject"`
	BodyHTML     *string    `json:"bodyHtml,omitempty"`
	UpdatedAt    string     `json:"updatedAt"`
	RequiredVars []string   `json:"requiredVars,omitempty"`
	Assets       []Asset    `json:"assets,omitempty"`
	Variables    []Variable `json:"variables,omitempty"`
}

// TemplateList is a page of templates.
type TemplateList struct {
	Items []Template `json:"items"`
	Total int        `json:"total"`
}

// Preview is a template rendered against a lead.
type Preview struct {
	HTML     string   `json:"html"`
	Text     string   `json:"text"`
	Warnings []string `json:"warnings,omitempty"`
}

// TestSend asks the backend to mail a rendered template to To.
type TestSend struct {
	To     string  `json:"to"`
	LeadID *string `json:"leadId"`
}

// ToUiTemplate normalizes one template payload. A missing updatedAt is stamped with the current time.
func ToUiTemplate(raw any) Template {
	data := normalization.AsMap(raw)

	template := Template{
		ID:        normalization.PickString(data, []string{"id"}, ""),
		Name:      normalization.PickString(data, []string{"name"}, ""),
		Subject:   normalization.PickString(data, []string{"subject", "subject_template", "subjectTemplate"}, ""),
		BodyHTML:  normalization.PickOptionalString(data, "bodyHtml", "body_html", "body_template", "bodyTemplate"),
		UpdatedAt: normalization.PickString(data, []string{"updatedAt", "updated_at"}, now().UTC().Format(timestampLayout)),
	}

	// Empty lists stay nil so they are omitted on the wire and survive a round trip.
	if vars := normalization.AsStringSlice(normalization.Pick(data, []string{"requiredVars", "required_vars"}, nil)); len(vars) > 0 {
		template.RequiredVars = vars
	}

	if assets, ok := normalization.Pick(data, []string{"assets"}, nil).([]any); ok && len(assets) > 0 {
		template.Assets = make([]Asset, 0, len(assets))
		for _, asset := range assets {
			template.Assets = append(template.Assets, toAsset(asset))
		}
	}

	if variables, ok := normalization.Pick(data, []string{"variables"}, nil).([]any); ok && len(variables) > 0 {
		template.Variables = ToUiTemplateVariables(variables)
	}

	return template
}

// ToUiTemplatesList normalizes a list response. Total defaults to the number of items.
func ToUiTemplatesList(raw any) TemplateList {
	items := normalization.AsArray(normalization.Pick(raw, []string{"items"}, nil), nil)

	list := TemplateList{
		Items: make([]Template, 0, len(items)),
		Total: normalization.PickInt(raw, []string{"total"}, len(items)),
	}
	for _, item := range items {
		list.Items = append(list.Items, ToUiTemplate(item))
	}
	return list
}

// ToUiTemplatePreview normalizes a rendered preview.
func ToUiTemplatePreview(raw any) Preview {
	data := normalization.AsMap(raw)

	preview := Preview{
		HTML: normalization.PickString(data, []string{"html"}, ""),
		Text: normalization.PickString(data, []string{"text"}, ""),
	}
	if warnings := normalization.AsStringSlice(normalization.Pick(data, []string{"warnings"}, nil)); len(warnings) > 0 {
		preview.Warnings = warnings
	}
	return preview
}

// ToUiTemplateVariables normalizes the variables of a template. Unknown sources become lead.
func ToUiTemplateVariables(raw any) []Variable {
	items := normalization.AsArray(raw, nil)
	variables := make([]Variable, 0, len(items))
	for _, item := range items {
		variables = append(variables, Variable{
			Key:      normalization.PickString(item, []string{"key"}, ""),
			Required: normalization.PickBool(item, []string{"required"}, false),
			Source:   parseSource(normalization.PickString(item, []string{"source"}, "")),
			Example:  normalization.PickOptionalString(item, "example"),
		})
	}
	return variables
}

func toAsset(raw any) Asset {
	asset := Asset{
		Key:  normalization.PickString(raw, []string{"key"}, ""),
		Type: AssetStatic,
	}
	if AssetType(normalization.PickString(raw, []string{"type"}, "")) == AssetCID {
		asset.Type = AssetCID
	}
	return asset
}

func parseSource(source string) VariableSource {
	switch VariableSource(source) {
	case SourceVars, SourceCampaign, SourceImage:
		return VariableSource(source)
	default:
		return SourceLead
	}
}
