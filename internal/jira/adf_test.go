package jira_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"qualisync.app/bridge/internal/jira"
)

var _ = Describe("ADF", func() {
	Describe("TextDocument", func() {
		It("wraps a string in a doc, paragraph, and text run", func() {
			doc := jira.TextDocument("finding-key")

			Expect(doc.Type).To(Equal("doc"))
			Expect(doc.Version).To(Equal(1))

			text, ok := jira.FirstText(doc)
			Expect(ok).To(BeTrue())
			Expect(text).To(Equal("finding-key"))
		})

		It("survives a marshal and parse round trip", func() {
			raw, err := json.Marshal(jira.TextDocument("finding-key"))
			Expect(err).NotTo(HaveOccurred())

			doc, err := jira.ParseDocument(raw)
			Expect(err).NotTo(HaveOccurred())

			text, ok := jira.FirstText(doc)
			Expect(ok).To(BeTrue())
			Expect(text).To(Equal("finding-key"))
		})
	})

	Describe("FirstText", func() {
		It("rejects a document with no content", func() {
			_, ok := jira.FirstText(jira.Document())
			Expect(ok).To(BeFalse())
		})

		It("rejects a document whose first node is not a paragraph", func() {
			doc := jira.Document(jira.Text("loose text"))
			_, ok := jira.FirstText(doc)
			Expect(ok).To(BeFalse())
		})

		It("rejects an empty paragraph", func() {
			doc := jira.Document(jira.Paragraph())
			_, ok := jira.FirstText(doc)
			Expect(ok).To(BeFalse())
		})

		It("rejects a text run with no text", func() {
			doc := jira.Document(jira.Paragraph(jira.Text("")))
			_, ok := jira.FirstText(doc)
			Expect(ok).To(BeFalse())
		})

		It("reads only the first run of the first paragraph", func() {
			doc := jira.Document(
				jira.Paragraph(jira.Text("first"), jira.Text("second")),
				jira.Paragraph(jira.Text("third")),
			)

			text, ok := jira.FirstText(doc)
			Expect(ok).To(BeTrue())
			Expect(text).To(Equal("first"))
		})
	})

	Describe("Link", func() {
		It("attaches a link mark with the href", func() {
			link := jira.Link("view finding", "https://sonar.example.com/issue")

			Expect(link.Type).To(Equal("text"))
			Expect(link.Marks).To(HaveLen(1))
			Expect(link.Marks[0].Type).To(Equal("link"))
			Expect(link.Marks[0].Attrs).To(HaveKeyWithValue("href", "https://sonar.example.com/issue"))
		})
	})
})
