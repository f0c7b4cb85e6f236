package model_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"qualisync.app/bridge/internal/model"
)

var _ = Describe("Finding", func() {
	Describe("FileName", func() {
		It("strips the project prefix from the component", func() {
			finding := model.Finding{Component: "my-project:src/main/java/App.java"}
			Expect(finding.FileName()).To(Equal("src/main/java/App.java"))
		})

		It("takes the last segment when the component has several colons", func() {
			finding := model.Finding{Component: "org:project:src/file.go"}
			Expect(finding.FileName()).To(Equal("src/file.go"))
		})

		It("returns the component unchanged when there is no prefix", func() {
			finding := model.Finding{Component: "src/file.go"}
			Expect(finding.FileName()).To(Equal("src/file.go"))
		})

		It("returns an empty string for an empty component", func() {
			finding := model.Finding{}
			Expect(finding.FileName()).To(BeEmpty())
		})
	})
})
