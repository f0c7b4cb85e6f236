package sync_test

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"qualisync.app/bridge/core/config"
	"qualisync.app/bridge/internal/jira"
	"qualisync.app/bridge/internal/model"
	"qualisync.app/bridge/internal/sync"
)

const referenceField = "customfield_10200"

func newCreationEngine(tracker *mockTracker, cache *sync.AccountCache) *sync.CreationEngine {
	return sync.NewCreationEngine(sync.CreationEngineConfig{
		Tracker:        tracker,
		Resolver:       sync.NewUserResolver(tracker, cache),
		Pacer:          sync.NewPacer(time.Millisecond),
		ProjectKey:     "SEC",
		ReferenceField: referenceField,
		ScannerBaseURL: "https://sonar.example.com",
	})
}

var _ = Describe("PriorityFor", func() {
	It("maps blocker and critical issues to Highest", func() {
		for _, severity := range []string{"BLOCKER", "CRITICAL"} {
			finding := model.Finding{Kind: model.FindingKindIssue, Severity: severity}
			Expect(sync.PriorityFor(finding)).To(Equal(model.PriorityHighest))
		}
	})

	It("maps all other issue severities to High", func() {
		for _, severity := range []string{"MAJOR", "MINOR", "INFO"} {
			finding := model.Finding{Kind: model.FindingKindIssue, Severity: severity}
			Expect(sync.PriorityFor(finding)).To(Equal(model.PriorityHigh))
		}
	})

	It("maps high and medium probability hotspots to Highest", func() {
		for _, probability := range []string{"HIGH", "MEDIUM"} {
			finding := model.Finding{Kind: model.FindingKindHotspot, Severity: probability}
			Expect(sync.PriorityFor(finding)).To(Equal(model.PriorityHighest))
		}
	})

	It("maps low probability hotspots to High", func() {
		finding := model.Finding{Kind: model.FindingKindHotspot, Severity: "LOW"}
		Expect(sync.PriorityFor(finding)).To(Equal(model.PriorityHigh))
	})
})

var _ = Describe("CreationEngine", func() {
	var (
		tracker *mockTracker
		cache   *sync.AccountCache
		engine  *sync.CreationEngine
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		tracker = &mockTracker{}
		cache = sync.NewAccountCache()
		engine = newCreationEngine(tracker, cache)
	})

	It("creates a ticket for an un-ticketed finding", func() {
		tracker.createIssueFn = func(_ context.Context, _ map[string]any) (string, error) {
			return "SEC-1", nil
		}

		finding := model.Finding{
			Key:        "finding-1",
			ProjectKey: "proj",
			Component:  "proj:src/main.go",
			Message:    "Remove this unused variable",
			Kind:       model.FindingKindIssue,
			Severity:   "BLOCKER",
		}

		created, existing := engine.Run(ctx, []model.Finding{finding}, sync.ExistenceIndex{}, nil)

		Expect(created).To(Equal([]string{"SEC-1"}))
		Expect(existing).To(BeEmpty())
		Expect(tracker.createdFields).To(HaveLen(1))

		fields := tracker.createdFields[0]
		Expect(fields["summary"]).To(Equal("Remove this unused variable in src/main.go"))
		Expect(fields["priority"]).To(Equal(map[string]any{"name": "Highest"}))

		refDoc, ok := fields[referenceField].(jira.ADF)
		Expect(ok).To(BeTrue())
		key, ok := jira.FirstText(refDoc)
		Expect(ok).To(BeTrue())
		Expect(key).To(Equal("finding-1"))
	})

	It("skips findings already present in the index", func() {
		finding := model.Finding{Key: "finding-1", Component: "p:f.go"}
		index := sync.ExistenceIndex{"finding-1": "SEC-9"}

		created, existing := engine.Run(ctx, []model.Finding{finding}, index, nil)

		Expect(created).To(BeEmpty())
		Expect(existing).To(Equal([]string{"SEC-9"}))
		Expect(tracker.createCalls).To(BeZero())
	})

	It("truncates long summaries to 254 characters with an ellipsis", func() {
		tracker.createIssueFn = func(_ context.Context, _ map[string]any) (string, error) {
			return "SEC-2", nil
		}

		finding := model.Finding{
			Key:       "finding-2",
			Component: "p:file.go",
			Message:   strings.Repeat("x", 300),
			Kind:      model.FindingKindIssue,
			Severity:  "MAJOR",
		}

		engine.Run(ctx, []model.Finding{finding}, sync.ExistenceIndex{}, nil)

		summary, ok := tracker.createdFields[0]["summary"].(string)
		Expect(ok).To(BeTrue())
		Expect(summary).To(HaveLen(254))
		Expect(summary).To(HaveSuffix("..."))
	})

	It("truncates multibyte messages on character boundaries", func() {
		tracker.createIssueFn = func(_ context.Context, _ map[string]any) (string, error) {
			return "SEC-2", nil
		}

		finding := model.Finding{
			Key:       "finding-2",
			Component: "p:file.go",
			Message:   strings.Repeat("é", 300),
			Kind:      model.FindingKindIssue,
			Severity:  "MAJOR",
		}

		engine.Run(ctx, []model.Finding{finding}, sync.ExistenceIndex{}, nil)

		summary, ok := tracker.createdFields[0]["summary"].(string)
		Expect(ok).To(BeTrue())
		Expect(utf8.ValidString(summary)).To(BeTrue())
		Expect(utf8.RuneCountInString(summary)).To(Equal(254))
		Expect(summary).To(HaveSuffix("é..."))
	})

	It("does not truncate a summary under the limit in characters but over it in bytes", func() {
		tracker.createIssueFn = func(_ context.Context, _ map[string]any) (string, error) {
			return "SEC-2", nil
		}

		message := strings.Repeat("é", 230)
		finding := model.Finding{
			Key:       "finding-2",
			Component: "p:file.go",
			Message:   message,
			Kind:      model.FindingKindIssue,
			Severity:  "MAJOR",
		}

		engine.Run(ctx, []model.Finding{finding}, sync.ExistenceIndex{}, nil)

		Expect(tracker.createdFields[0]["summary"]).To(Equal(message + " in file.go"))
	})

	It("continues with remaining findings when one creation fails", func() {
		tracker.createIssueFn = func(_ context.Context, fields map[string]any) (string, error) {
			if strings.Contains(fields["summary"].(string), "first") {
				return "", errors.New("boom")
			}
			return "SEC-3", nil
		}

		findings := []model.Finding{
			{Key: "k1", Component: "p:a.go", Message: "first"},
			{Key: "k2", Component: "p:b.go", Message: "second"},
		}

		created, _ := engine.Run(ctx, findings, sync.ExistenceIndex{}, nil)

		Expect(created).To(Equal([]string{"SEC-3"}))
		Expect(tracker.createCalls).To(Equal(2))
	})

	It("assigns the resolved tracker account when the project email is cached", func() {
		cache.Set("dev@example.com", "acc-42")
		tracker.createIssueFn = func(_ context.Context, _ map[string]any) (string, error) {
			return "SEC-4", nil
		}

		finding := model.Finding{Key: "k1", ProjectKey: "proj", Component: "p:a.go", Message: "m"}
		projects := map[string]config.Project{
			"proj": {Key: "proj", Name: "Project", AssigneeEmail: "dev@example.com", Component: "backend"},
		}

		engine.Run(ctx, []model.Finding{finding}, sync.ExistenceIndex{}, projects)

		fields := tracker.createdFields[0]
		Expect(fields["assignee"]).To(Equal(map[string]any{"accountId": "acc-42"}))
		Expect(fields["labels"]).To(Equal([]string{"backend"}))
	})
})
