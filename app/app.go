package app

import (
	"context"
	"fmt"
	"sort"

	"CloudSentry/core"
	"CloudSentry/detect"
	"CloudSentry/filter"
	"CloudSentry/internal/credstore"
	"CloudSentry/internal/logger"
	"CloudSentry/output"
	"CloudSentry/providers"
	"CloudSentry/rules"
	"CloudSentry/summary"
)

// View status values
const (
	StatusOK     = "ok"
	StatusNoData = "no_data"
)

// View is the complete output of one interaction cycle: the filtered
// record collection plus everything the presentation layer renders from
// it. It is derived data, recomputed from the cached fetch on every
// filter change and never persisted.
type View struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`

	// Fetch degradation metadata
	Fallback       bool   `json:"fallback,omitempty"`
	FallbackReason string `json:"fallbackReason,omitempty"`
	Skipped        int    `json:"skippedRecords,omitempty"`

	// The filtered view and its per-record sensitivity flags
	// (Sensitive[i] applies to Records[i])
	Records   core.Events `json:"records"`
	Sensitive []bool      `json:"sensitive"`

	Suspicious  []detect.SuspiciousUser  `json:"suspicious"`
	BySource    []summary.SourceCount    `json:"bySource"`
	ByDay       []summary.DayCount       `json:"byDay"`
	ByEventType []summary.EventTypeCount `json:"byEventType"`
}

// App represents the CloudSentry application
type App struct {
	Config *Config

	ruleSet  *rules.RuleSet
	cache    *providers.Cache
	creds    credstore.Store
	registry map[string]providers.Provider
}

// New creates a new CloudSentry application instance
func New(config *Config) *App {
	return &App{
		Config: config,
	}
}

// Initialize validates the configuration, builds the classification rule
// set, and registers the configured log source providers.
func (a *App) Initialize(ctx context.Context) error {
	logger.Init(a.Config.Verbose, a.Config.Silent)

	if err := a.Config.Validate(); err != nil {
		return err
	}

	sensitive := a.Config.SensitiveEvents
	if len(sensitive) == 0 {
		sensitive = rules.DefaultSensitiveEvents
	}
	critical := a.Config.CriticalEvents
	if len(critical) == 0 {
		critical = rules.DefaultCriticalEvents
	}

	ruleSet, err := rules.New(sensitive, critical, a.Config.AlertThreshold)
	if err != nil {
		return fmt.Errorf("invalid classification rules: %w", err)
	}
	a.ruleSet = ruleSet

	a.cache = providers.NewCache()
	a.creds = credstore.NewStore(credstore.DefaultDir())
	a.registry = make(map[string]providers.Provider)

	// The demo provider is always available
	a.registry["gcp"] = providers.NewGCPDemoProvider()

	if a.Config.InputPath != "" {
		a.registry["csv"] = providers.NewCSVFileProvider(a.Config.InputPath)
	}

	if a.Config.Bucket != "" || a.Config.FallbackPath != "" {
		ct, err := providers.NewCloudTrailProvider(ctx, providers.CloudTrailOptions{
			Bucket:            a.Config.Bucket,
			Prefix:            a.Config.Prefix,
			Region:            a.Config.Region,
			MaxFiles:          a.Config.MaxFiles,
			Workers:           a.Config.Workers,
			FallbackPath:      a.Config.FallbackPath,
			CredentialProfile: a.Config.CredentialProfile,
		}, a.creds)
		if err != nil {
			return fmt.Errorf("failed to create cloudtrail provider: %w", err)
		}
		a.registry["aws"] = ct
	}

	logger.Info("CloudSentry initialized (provider: %s, threshold: %d)",
		a.Config.Provider, a.ruleSet.AlertThreshold())

	return nil
}

// Rules returns the active classification rule set
func (a *App) Rules() *rules.RuleSet {
	return a.ruleSet
}

// Providers returns the registered provider names, sorted
func (a *App) Providers() []string {
	names := make([]string, 0, len(a.registry))
	for name := range a.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load returns the fetch result for the named provider, served from the
// process-lifetime cache when the same fetch has run before.
func (a *App) Load(ctx context.Context, providerName string) (*providers.FetchResult, error) {
	p, ok := a.registry[providerName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", providers.ErrUnknownProvider, providerName)
	}
	return a.cache.Fetch(ctx, p)
}

// BuildView runs one full interaction cycle: load (cached), filter,
// detect, project. An empty fetch short-circuits with a no-data view;
// the filter chain and detector are not invoked in that case.
func (a *App) BuildView(ctx context.Context, providerName string, criteria filter.Criteria) (*View, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	result, err := a.Load(ctx, providerName)
	if err != nil {
		return nil, err
	}

	view := &View{
		Provider:       providerName,
		Fallback:       result.Fallback,
		FallbackReason: result.FallbackReason,
		Skipped:        result.Skipped,
	}

	if result.Empty() {
		logger.Warn("No logs found for provider %s", providerName)
		view.Status = StatusNoData
		view.Records = core.Events{}
		view.Sensitive = []bool{}
		view.Suspicious = []detect.SuspiciousUser{}
		view.BySource = []summary.SourceCount{}
		view.ByDay = []summary.DayCount{}
		view.ByEventType = []summary.EventTypeCount{}
		return view, nil
	}

	filtered := filter.Apply(result.Records, criteria, a.ruleSet)

	view.Status = StatusOK
	view.Records = filtered
	view.Sensitive = filter.SensitiveFlags(filtered, a.ruleSet)
	view.Suspicious = detect.SuspiciousUsers(filtered, a.ruleSet)
	view.BySource = summary.BySource(filtered)
	view.ByDay = summary.ByDay(filtered)
	view.ByEventType = summary.ByEventType(filtered)

	if len(view.Suspicious) > 0 {
		logger.Warn("Suspicious activity detected: %d user(s) at or above threshold %d",
			len(view.Suspicious), a.ruleSet.AlertThreshold())
	}

	return view, nil
}

// Export writes the view's filtered records to the configured output
// path in the configured format.
func (a *App) Export(view *View) error {
	writer, err := output.GetWriter(a.Config.Format, a.Config.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create export writer: %w", err)
	}

	if err := writer.Write(view.Records); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write export: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize export: %w", err)
	}

	logger.Info("Exported %d records to %s (%s)", len(view.Records), a.Config.OutputPath, a.Config.Format)
	return nil
}
