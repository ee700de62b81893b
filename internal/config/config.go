package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath       string
	RawMailDir   string
	OutputDir    string
	EmailRootDir string

	TrackingAPIBaseURL    string
	TrackingAPIToken      string
	TrackingRateLimitRPS  int
	TrackingTimeoutMs     int
	TrackingLookbackHours int
	TrackingLookbackDays  int

	FuzzyThreshold          float64
	CrossRefOKThreshold     float64
	CrossRefReviewThreshold float64
	CrossRefGapThreshold    float64

	ScanWorkers  int
	ScanMaxFiles int

	GmailClientID     string
	GmailClientSecret string
	GmailRedirectURI  string
	GmailRefreshToken string

	IMAPHost     string
	IMAPPort     int
	IMAPSecure   bool
	IMAPUser     string
	IMAPPassword string
	IMAPMarkSeen bool

	MailSearchKeywords []string
	MailLookbackDays   int

	MailListenerProvider     string
	MailListenerLabel        string
	MailListenerIntervalSec  int
	MailListenerFetchMax     int
	MailListenerProcessBatch int
	MailListenerAutoExport   bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:       getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		RawMailDir:   getEnv("MAIL_RAW_DIR", filepath.Join(cwd, "data", "raw")),
		OutputDir:    getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		EmailRootDir: getEnv("EMAIL_ROOT_DIR", filepath.Join(cwd, "emails")),

		TrackingAPIBaseURL:    getEnv("TRACKING_API_BASE_URL", "https://tracking.example.com/api/v1"),
		TrackingAPIToken:      getEnv("TRACKING_API_TOKEN", ""),
		TrackingRateLimitRPS:  getEnvInt("TRACKING_RATE_LIMIT_RPS", 5),
		TrackingTimeoutMs:     getEnvInt("TRACKING_TIMEOUT_MS", 30000),
		TrackingLookbackHours: getEnvInt("TRACKING_INCREMENTAL_HOURS", 24),
		TrackingLookbackDays:  getEnvInt("TRACKING_INCREMENTAL_DAYS", 2),

		FuzzyThreshold:          getEnvFloat("FUZZY_THRESHOLD", 0.82),
		CrossRefOKThreshold:     getEnvFloat("CROSSREF_OK_THRESHOLD", 0.90),
		CrossRefReviewThreshold: getEnvFloat("CROSSREF_REVIEW_THRESHOLD", 0.72),
		CrossRefGapThreshold:    getEnvFloat("CROSSREF_GAP_THRESHOLD", 0.08),

		ScanWorkers:  getEnvInt("SCAN_WORKERS", 4),
		ScanMaxFiles: getEnvInt("SCAN_MAX_FILES", 0),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRedirectURI:  getEnv("GMAIL_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),

		IMAPHost:     getEnv("IMAP_HOST", ""),
		IMAPPort:     getEnvInt("IMAP_PORT", 993),
		IMAPSecure:   getEnvBool("IMAP_SECURE", true),
		IMAPUser:     getEnv("IMAP_USER", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),
		IMAPMarkSeen: getEnvBool("IMAP_MARK_SEEN", false),

		MailSearchKeywords: getEnvList("MAIL_SEARCH_KEYWORDS", []string{"HVDC", "JPTW", "GRM", "PRL"}),
		MailLookbackDays:   getEnvInt("MAIL_LOOKBACK_DAYS", 14),

		MailListenerProvider:     getEnv("MAIL_LISTENER_PROVIDER", "gmail"),
		MailListenerLabel:        getEnv("MAIL_LISTENER_LABEL", "INBOX"),
		MailListenerIntervalSec:  getEnvInt("MAIL_LISTENER_INTERVAL_SEC", 30),
		MailListenerFetchMax:     getEnvInt("MAIL_LISTENER_FETCH_MAX", 20),
		MailListenerProcessBatch: getEnvInt("MAIL_LISTENER_PROCESS_BATCH", 20),
		MailListenerAutoExport:   getEnvBool("MAIL_LISTENER_AUTO_EXPORT", true),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value := getEnv(key, "")
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
