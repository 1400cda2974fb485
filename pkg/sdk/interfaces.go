package sdk

import (
	"context"
	"io"

	"github.com/celerix-dev/mobidash/internal/dashboard"
	"github.com/celerix-dev/mobidash/pkg/schema"
)

// --- Functional Interfaces (Interface Segregation) ---

// ChartReader lists and fetches stored charts.
type ChartReader interface {
	GetAllCharts() []schema.Chart
	GetChartByID(id string) (schema.Chart, error)
}

// ChartWriter creates, updates and deletes charts.
type ChartWriter interface {
	SaveChart(def schema.ChartDefinition) (schema.Chart, error)
	UpdateChart(id string, patch dashboard.ChartPatch) (schema.Chart, error)
	DeleteChart(id string) error
}

// TableReader lists and fetches stored tables.
type TableReader interface {
	GetAllTables() []schema.Table
	GetTableByID(id string) (schema.Table, error)
}

// TableWriter creates, updates and deletes tables.
type TableWriter interface {
	SaveTable(def schema.TableDefinition) (schema.Table, error)
	UpdateTable(id string, patch dashboard.TablePatch) (schema.Table, error)
	DeleteTable(id string) error
}

// PreferenceStore reads and writes the user's display settings.
type PreferenceStore interface {
	Preferences() schema.Preferences
	SetTheme(theme string) (schema.Preferences, error)
	ToggleTheme() (schema.Preferences, error)
}

// --- Composite Interfaces ---

// Dashboard is the full set of dashboard operations. *dashboard.Store implements it
// in-process and *Client implements it over HTTP.
type Dashboard interface {
	ChartReader
	ChartWriter
	TableReader
	TableWriter
	PreferenceStore

	// ClearAllData removes every chart and table. Preferences are kept.
	ClearAllData() error
}

var (
	_ Dashboard = (*dashboard.Store)(nil)
	_ Handle    = (*Client)(nil)
	_ Handle    = (*Embedded)(nil)
)

// Transfer moves files in and out of the store: imports, exports and rendered images.
type Transfer interface {
	ImportChart(ctx context.Context, name string, content []byte) (schema.Chart, error)
	ChartImage(ctx context.Context, id, format string, width, height int) ([]byte, error)
	ImportTable(ctx context.Context, name string, content []byte, sheet string) (schema.Table, error)
	// ExportTable renders a table as "json" or "xlsx".
	ExportTable(ctx context.Context, id, format string) ([]byte, error)
	// TableToChart derives a bar chart from a table, saving it when save is set.
	TableToChart(ctx context.Context, id string, save bool) (schema.Chart, error)
}

// Handle is what New returns: a Dashboard with file transfers that must be
// closed when the caller is done with it.
type Handle interface {
	Dashboard
	Transfer
	io.Closer
}
