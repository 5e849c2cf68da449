package transport

import (
	"context"
	"io"

	"outreachDesk/internal/modules/leads/application/usecase"
	leads "outreachDesk/internal/modules/leads/domain"
	settings "outreachDesk/internal/modules/settings/domain"
	stats "outreachDesk/internal/modules/stats/domain"
	templates "outreachDesk/internal/modules/templates/domain"
)

type SettingsService interface {
	Get(ctx context.Context) (settings.Settings, error)
	Update(ctx context.Context, update settings.SettingsUpdate) (settings.Settings, error)
}

type StatsService interface {
	Summary(ctx context.Context, query stats.StatsQuery) (stats.Summary, error)
	Export(ctx context.Context, query stats.StatsExportQuery) (string, error)
}

type TemplatesService interface {
	List(ctx context.Context) templates.TemplateList
	Get(ctx context.Context, id string) (templates.Template, error)
	Preview(ctx context.Context, id, leadID string) (templates.Preview, error)
	Variables(ctx context.Context, id string) ([]templates.Variable, error)
	SendTest(ctx context.Context, id string, payload templates.TestSend) (bool, error)
}

type LeadsService interface {
	List(ctx context.Context, query leads.LeadsQuery) (leads.LeadsPage, error)
	Get(ctx context.Context, id string) (*leads.Lead, error)
	Import(ctx context.Context, fileName string, file io.Reader, mapping leads.ImportMapping) (leads.ImportJob, error)
	PreviewImport(ctx context.Context, fileName string, file io.Reader) (leads.ImportPreview, error)
	FetchImportJob(ctx context.Context, jobID string) (*leads.ImportJob, error)
	ImageURL(ctx context.Context, key string) (string, error)
}

// ImportWatchers hands out shared pollers per import job.
type ImportWatchers interface {
	Acquire(jobID string) (*usecase.ImportPoller, func())
	Refetch(ctx context.Context, jobID string) (bool, error)
}

// Services bundles the backends a Handler serves from.
type Services struct {
	Settings  SettingsService
	Stats     StatsService
	Templates TemplatesService
	Leads     LeadsService
	Watchers  ImportWatchers
}
