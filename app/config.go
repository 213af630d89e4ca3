package app

import (
	"errors"
	"strings"

	"CloudSentry/providers"
	"CloudSentry/rules"
)

// Common errors
var (
	ErrUnsupportedFormat   = errors.New("unsupported output format")
	ErrUnsupportedProvider = errors.New("unsupported cloud provider")
	ErrMissingBucket       = errors.New("aws provider requires a bucket name or a fallback archive")
	ErrMissingInput        = errors.New("csv provider requires an input path")
)

// SupportedFormats defines the export formats supported by CloudSentry
var SupportedFormats = []string{"csv", "jsonl", "sqlite"}

// SupportedProviders defines the log source providers supported by CloudSentry
var SupportedProviders = []string{"aws", "gcp", "csv"}

// Config holds the configuration for CloudSentry
type Config struct {
	// Provider selection
	Provider          string // aws, gcp, csv
	Bucket            string // S3 bucket holding CloudTrail logs (aws)
	Prefix            string // S3 key prefix (aws)
	Region            string // AWS region override (aws)
	MaxFiles          int    // cap on log objects fetched per load (aws)
	Workers           int    // concurrent object downloads, 0 uses the CPU count (aws)
	InputPath         string // local log archive path (csv)
	FallbackPath      string // local archive served when S3 is unreachable (aws)
	CredentialProfile string // named profile in the credential store (aws)

	// Export settings
	OutputPath string
	Format     string

	// Classification rules; empty lists fall back to the documented
	// defaults in the rules package
	SensitiveEvents []string
	CriticalEvents  []string
	AlertThreshold  int

	// UI settings
	Verbose bool // Enable verbose logging
	Silent  bool // Disable all console output except errors
}

// NewDefaultConfig creates a new Config with default values
func NewDefaultConfig() *Config {
	return &Config{
		Provider:       "aws",
		MaxFiles:       providers.DefaultMaxFiles,
		FallbackPath:   "data/aws_logs.csv",
		Format:         "csv",
		AlertThreshold: rules.DefaultAlertThreshold,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	c.Format = strings.ToLower(c.Format)
	if !contains(SupportedFormats, c.Format) {
		return ErrUnsupportedFormat
	}

	c.Provider = strings.ToLower(c.Provider)
	if !contains(SupportedProviders, c.Provider) {
		return ErrUnsupportedProvider
	}

	// Without a bucket the aws provider serves the fallback archive, so
	// one of the two must be configured
	if c.Provider == "aws" && c.Bucket == "" && c.FallbackPath == "" {
		return ErrMissingBucket
	}
	if c.Provider == "csv" && c.InputPath == "" {
		return ErrMissingInput
	}

	if c.AlertThreshold < 1 {
		return rules.ErrInvalidThreshold
	}

	if c.MaxFiles <= 0 {
		c.MaxFiles = providers.DefaultMaxFiles
	}

	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
