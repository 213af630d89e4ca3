package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"CloudSentry/providers"
	"CloudSentry/rules"
)

// SupportedFormats defines the export formats supported by CloudSentry
var SupportedFormats = []string{"csv", "jsonl", "sqlite"}

// SupportedProviders defines the log source providers supported by CloudSentry
var SupportedProviders = []string{"aws", "gcp", "csv"}

// Config holds the command-line configuration for CloudSentry
type Config struct {
	// Provider settings
	Provider          string
	Bucket            string
	Prefix            string
	Region            string
	MaxFiles          int
	Workers           int
	InputPath         string
	FallbackPath      string
	CredentialProfile string

	// Credential management commands (run standalone and exit)
	SaveCredProfile   string
	DeleteCredProfile string

	// Filter settings (one-shot mode)
	StartDate     string // YYYY-MM-DD, inclusive
	EndDate       string // YYYY-MM-DD, inclusive of the whole day
	EventNames    string // comma-separated event names
	Users         string // comma-separated user names
	SensitiveOnly bool

	// Classification rules
	Threshold       int
	SensitiveEvents string // comma-separated, empty uses defaults
	CriticalEvents  string // comma-separated, empty uses defaults

	// Export settings (one-shot mode)
	OutputPath string
	Format     string

	// API server mode
	APIOnly         bool
	Port            int
	ShutdownTimeout int // seconds

	// Logging
	LogFile       string
	LogMaxSize    int // megabytes
	LogMaxAge     int // days
	LogMaxBackups int
	LogCompress   bool
	Verbose       bool
	Silent        bool
}

// ParseFlags parses command-line flags and returns a Config
func ParseFlags() (*Config, error) {
	config := &Config{}

	// Provider flags
	flag.StringVar(&config.Provider, "provider", "aws", "Log source provider (aws, gcp, csv)")
	flag.StringVar(&config.Bucket, "bucket", "", "S3 bucket holding CloudTrail logs (aws provider)")
	flag.StringVar(&config.Prefix, "prefix", "AWSLogs/", "S3 key prefix (aws provider)")
	flag.StringVar(&config.Region, "region", "", "AWS region override (aws provider)")
	flag.IntVar(&config.MaxFiles, "max-files", providers.DefaultMaxFiles, "Maximum number of log objects to fetch per load")
	flag.IntVar(&config.Workers, "workers", 0, "Concurrent log object downloads (0 uses the CPU count)")
	flag.StringVar(&config.InputPath, "input", "", "Path to a local log archive (csv provider)")
	flag.StringVar(&config.FallbackPath, "fallback", "data/aws_logs.csv", "Local archive served when S3 is unreachable (empty disables)")
	flag.StringVar(&config.CredentialProfile, "cred-profile", "", "Named credential-store profile for AWS access")
	flag.StringVar(&config.SaveCredProfile, "save-cred-profile", "", "Save AWS credentials from the environment under the named profile and exit")
	flag.StringVar(&config.DeleteCredProfile, "delete-cred-profile", "", "Delete the named credential-store profile and exit")

	// Filter flags
	flag.StringVar(&config.StartDate, "start", "", "Start date (YYYY-MM-DD, inclusive)")
	flag.StringVar(&config.EndDate, "end", "", "End date (YYYY-MM-DD, inclusive of the whole day)")
	flag.StringVar(&config.EventNames, "events", "", "Comma-separated event names to keep")
	flag.StringVar(&config.Users, "users", "", "Comma-separated user names to keep")
	flag.BoolVar(&config.SensitiveOnly, "sensitive-only", false, "Keep only sensitive events")

	// Rule flags
	flag.IntVar(&config.Threshold, "threshold", rules.DefaultAlertThreshold, "Critical-event count that flags a user as suspicious")
	flag.StringVar(&config.SensitiveEvents, "sensitive-events", "", "Comma-separated sensitive event names (empty uses defaults)")
	flag.StringVar(&config.CriticalEvents, "critical-events", "", "Comma-separated critical event names (empty uses defaults)")

	// Export flags
	flag.StringVar(&config.OutputPath, "output", "", "Path for the export file (one-shot mode)")
	flag.StringVar(&config.Format, "format", "csv", "Export format (csv, jsonl, sqlite)")

	// API server flags
	flag.BoolVar(&config.APIOnly, "api", false, "Run as a local API server instead of one-shot processing")
	flag.IntVar(&config.Port, "port", 8765, "Port to use for the API server")
	flag.IntVar(&config.ShutdownTimeout, "shutdown-timeout", 15, "Timeout in seconds for graceful shutdown")

	// Logging flags
	flag.StringVar(&config.LogFile, "log-file", "", "Path to log file (if empty, logs to stdout)")
	flag.IntVar(&config.LogMaxSize, "log-max-size", 50, "Maximum size of log file in megabytes before rotation")
	flag.IntVar(&config.LogMaxAge, "log-max-age", 14, "Maximum age of log file in days before rotation")
	flag.IntVar(&config.LogMaxBackups, "log-max-backups", 5, "Maximum number of old log files to retain")
	flag.BoolVar(&config.LogCompress, "log-compress", true, "Compress rotated log files")
	flag.BoolVar(&config.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&config.Silent, "silent", false, "Disable all console output except errors")

	flag.Parse()

	// Validate provider
	config.Provider = strings.ToLower(config.Provider)
	if !member(SupportedProviders, config.Provider) {
		return nil, fmt.Errorf("unsupported provider: %s (supported providers: %s)",
			config.Provider, strings.Join(SupportedProviders, ", "))
	}

	// Validate format
	config.Format = strings.ToLower(config.Format)
	if !member(SupportedFormats, config.Format) {
		return nil, fmt.Errorf("unsupported format: %s (supported formats: %s)",
			config.Format, strings.Join(SupportedFormats, ", "))
	}

	// Credential management commands run standalone, so the provider and
	// export requirements below do not apply.
	if config.SaveCredProfile != "" || config.DeleteCredProfile != "" {
		return config, nil
	}

	// Provider-specific requirements. A bucketless aws provider serves the
	// local fallback archive, so only the combination of no bucket and no
	// fallback is rejected.
	if config.Provider == "aws" && config.Bucket == "" && config.FallbackPath == "" {
		return nil, fmt.Errorf("--bucket or --fallback is required with the aws provider")
	}
	if config.Provider == "csv" && config.InputPath == "" {
		return nil, fmt.Errorf("--input is required with the csv provider")
	}

	// One-shot mode writes an export artifact
	if !config.APIOnly && config.OutputPath == "" {
		return nil, fmt.Errorf("--output is required (or run with --api)")
	}

	if config.Threshold < 1 {
		return nil, fmt.Errorf("--threshold must be at least 1")
	}

	return config, nil
}

// PrintUsage prints the usage information for CloudSentry
func PrintUsage() {
	fmt.Fprintf(os.Stderr, "CloudSentry - Multi-cloud audit log analyzer\n\n")
	fmt.Fprintf(os.Stderr, "Usage: cloudsentry --provider <name> --output <path> [options]\n")
	fmt.Fprintf(os.Stderr, "       cloudsentry --api [--port <port>] [options]\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

func member(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
