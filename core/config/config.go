package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Env   string
	Port  string
	OTel  OTelConfig
	Sonar SonarConfig
	Jira  JiraConfig
	Sync  SyncConfig
}

type SonarConfig struct {
	BaseURL string
	Token   string
	// FallbackProjectKey is used when no project list is configured.
	FallbackProjectKey string
}

type JiraConfig struct {
	BaseURL  string
	Username string
	Token    string
	// ProjectKey is the tracker project new tickets are filed under.
	ProjectKey string
	// ReferenceField is the custom field holding the originating finding key.
	ReferenceField string
}

type SyncConfig struct {
	ProjectsFile string
	// Schedule is a cron expression; empty disables the periodic sync.
	Schedule string
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

// Load loads configuration from environment variables. In development it
// first loads a .env file if one exists. Every missing required value is
// collected so a misconfigured deployment fails once with the complete list.
func Load() (Config, error) {
	if getEnv("BRIDGE_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	cfg := Config{
		Env:  getEnv("BRIDGE_ENV", "development"),
		Port: getEnv("PORT", "8080"),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "bridge"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		Sonar: SonarConfig{
			BaseURL:            getEnv("SONAR_URL", ""),
			Token:              getEnv("SONAR_TOKEN", ""),
			FallbackProjectKey: getEnv("SONAR_PROJECT_KEY", ""),
		},
		Jira: JiraConfig{
			BaseURL:        getEnv("JIRA_URL", ""),
			Username:       getEnv("JIRA_USERNAME", ""),
			Token:          getEnv("JIRA_TOKEN", ""),
			ProjectKey:     getEnv("JIRA_PROJECT_KEY", "SEC"),
			ReferenceField: getEnv("JIRA_REFERENCE_FIELD", "customfield_10200"),
		},
		Sync: SyncConfig{
			ProjectsFile: getEnv("PROJECTS_FILE", "projects.yaml"),
			Schedule:     getEnv("SYNC_SCHEDULE", ""),
		},
	}

	required := []struct {
		name  string
		value string
	}{
		{"SONAR_URL", cfg.Sonar.BaseURL},
		{"SONAR_TOKEN", cfg.Sonar.Token},
		{"JIRA_URL", cfg.Jira.BaseURL},
		{"JIRA_USERNAME", cfg.Jira.Username},
		{"JIRA_TOKEN", cfg.Jira.Token},
	}

	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
