package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"qualisync.app/bridge/core/config"
)

var _ = Describe("LoadProjects", func() {
	writeProjects := func(content string) string {
		path := filepath.Join(GinkgoT().TempDir(), "projects.yaml")
		Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
		return path
	}

	It("returns enabled projects with keys, in file order", func() {
		path := writeProjects(`projects:
  - key: alpha
    name: Alpha
    assigneeEmail: alpha@example.com
    component: backend
    enabled: true
  - key: beta
    name: Beta
    enabled: false
  - key: ""
    name: Unkeyed
    enabled: true
  - key: gamma
    name: Gamma
    enabled: true
`)

		projects, err := config.LoadProjects(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(projects).To(HaveLen(2))
		Expect(projects[0].Key).To(Equal("alpha"))
		Expect(projects[0].AssigneeEmail).To(Equal("alpha@example.com"))
		Expect(projects[0].Component).To(Equal("backend"))
		Expect(projects[1].Key).To(Equal("gamma"))
	})

	It("treats a missing file as an empty project list", func() {
		projects, err := config.LoadProjects(filepath.Join(GinkgoT().TempDir(), "absent.yaml"))

		Expect(err).NotTo(HaveOccurred())
		Expect(projects).To(BeNil())
	})

	It("fails on malformed YAML", func() {
		path := writeProjects("projects: [broken")

		_, err := config.LoadProjects(path)

		Expect(err).To(MatchError(ContainSubstring("parsing projects file")))
	})
})
