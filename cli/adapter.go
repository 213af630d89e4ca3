package cli

import (
	"fmt"
	"strings"
	"time"

	"CloudSentry/app"
	"CloudSentry/filter"
)

// ToAppConfig converts a CLI Config to an app.Config
func ToAppConfig(cliConfig *Config) *app.Config {
	return &app.Config{
		Provider:          cliConfig.Provider,
		Bucket:            cliConfig.Bucket,
		Prefix:            cliConfig.Prefix,
		Region:            cliConfig.Region,
		MaxFiles:          cliConfig.MaxFiles,
		Workers:           cliConfig.Workers,
		InputPath:         cliConfig.InputPath,
		FallbackPath:      cliConfig.FallbackPath,
		CredentialProfile: cliConfig.CredentialProfile,
		OutputPath:        cliConfig.OutputPath,
		Format:            cliConfig.Format,
		SensitiveEvents:   splitList(cliConfig.SensitiveEvents),
		CriticalEvents:    splitList(cliConfig.CriticalEvents),
		AlertThreshold:    cliConfig.Threshold,
		Verbose:           cliConfig.Verbose,
		Silent:            cliConfig.Silent,
	}
}

// ToCriteria converts the CLI filter flags to filter criteria. Dates are
// calendar dates interpreted as UTC.
func ToCriteria(cliConfig *Config) (filter.Criteria, error) {
	var criteria filter.Criteria

	if cliConfig.StartDate != "" {
		t, err := time.ParseInLocation("2006-01-02", cliConfig.StartDate, time.UTC)
		if err != nil {
			return criteria, fmt.Errorf("invalid --start date %q (want YYYY-MM-DD)", cliConfig.StartDate)
		}
		criteria.Start = t
	}
	if cliConfig.EndDate != "" {
		t, err := time.ParseInLocation("2006-01-02", cliConfig.EndDate, time.UTC)
		if err != nil {
			return criteria, fmt.Errorf("invalid --end date %q (want YYYY-MM-DD)", cliConfig.EndDate)
		}
		criteria.End = t
	}

	criteria.EventNames = splitList(cliConfig.EventNames)
	criteria.Users = splitList(cliConfig.Users)
	criteria.SensitiveOnly = cliConfig.SensitiveOnly

	if err := criteria.Validate(); err != nil {
		return criteria, err
	}

	return criteria, nil
}

// splitList splits a comma-separated flag value, trimming whitespace and
// dropping empty entries
func splitList(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	list := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			list = append(list, part)
		}
	}
	return list
}
