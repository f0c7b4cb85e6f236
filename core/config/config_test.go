package config_test

import (
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"qualisync.app/bridge/core/config"
)

var configVars = []string{
	"BRIDGE_ENV", "PORT",
	"SONAR_URL", "SONAR_TOKEN", "SONAR_PROJECT_KEY",
	"JIRA_URL", "JIRA_USERNAME", "JIRA_TOKEN", "JIRA_PROJECT_KEY", "JIRA_REFERENCE_FIELD",
	"PROJECTS_FILE", "SYNC_SCHEDULE",
	"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SERVICE_NAME", "OTEL_SERVICE_VERSION",
}

func setRequiredVars() {
	os.Setenv("SONAR_URL", "https://sonar.example.com")
	os.Setenv("SONAR_TOKEN", "sonar-token")
	os.Setenv("JIRA_URL", "https://example.atlassian.net")
	os.Setenv("JIRA_USERNAME", "bot@example.com")
	os.Setenv("JIRA_TOKEN", "jira-token")
}

var _ = Describe("Load", func() {
	var saved map[string]string

	BeforeEach(func() {
		saved = map[string]string{}
		for _, name := range configVars {
			if value, ok := os.LookupEnv(name); ok {
				saved[name] = value
			}
			os.Unsetenv(name)
		}
	})

	AfterEach(func() {
		for _, name := range configVars {
			os.Unsetenv(name)
		}
		for name, value := range saved {
			os.Setenv(name, value)
		}
	})

	It("loads a complete configuration", func() {
		setRequiredVars()
		os.Setenv("BRIDGE_ENV", "production")
		os.Setenv("PORT", "9090")

		cfg, err := config.Load()

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.IsProduction()).To(BeTrue())
		Expect(cfg.Port).To(Equal("9090"))
		Expect(cfg.Sonar.BaseURL).To(Equal("https://sonar.example.com"))
		Expect(cfg.Jira.Username).To(Equal("bot@example.com"))
	})

	It("applies defaults for optional values", func() {
		setRequiredVars()

		cfg, err := config.Load()

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.IsDevelopment()).To(BeTrue())
		Expect(cfg.Port).To(Equal("8080"))
		Expect(cfg.Jira.ProjectKey).To(Equal("SEC"))
		Expect(cfg.Jira.ReferenceField).To(Equal("customfield_10200"))
		Expect(cfg.Sync.ProjectsFile).To(Equal("projects.yaml"))
		Expect(cfg.Sync.Schedule).To(BeEmpty())
		Expect(cfg.OTel.Enabled()).To(BeFalse())
	})

	It("lists every missing required variable in one error", func() {
		os.Setenv("SONAR_URL", "https://sonar.example.com")

		_, err := config.Load()

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("SONAR_TOKEN"))
		Expect(err.Error()).To(ContainSubstring("JIRA_URL"))
		Expect(err.Error()).To(ContainSubstring("JIRA_USERNAME"))
		Expect(err.Error()).To(ContainSubstring("JIRA_TOKEN"))
		Expect(err.Error()).NotTo(ContainSubstring("SONAR_URL"))
	})

	It("enables telemetry when an exporter endpoint is set", func() {
		setRequiredVars()
		os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "https://otlp.example.com")

		cfg, err := config.Load()

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.OTel.Enabled()).To(BeTrue())
	})
})
