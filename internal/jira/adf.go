package jira

import "encoding/json"

// ADF is an Atlassian Document Format node. Only the node kinds this
// service writes and reads are modeled: doc, paragraph, and text with an
// optional link mark.
type ADF struct {
	Type    string `json:"type"`
	Version int    `json:"version,omitempty"`
	Text    string `json:"text,omitempty"`
	Content []ADF  `json:"content,omitempty"`
	Marks   []Mark `json:"marks,omitempty"`
}

type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

func Document(content ...ADF) ADF {
	return ADF{Type: "doc", Version: 1, Content: content}
}

func Paragraph(content ...ADF) ADF {
	return ADF{Type: "paragraph", Content: content}
}

func Text(s string) ADF {
	return ADF{Type: "text", Text: s}
}

func Link(text, href string) ADF {
	return ADF{
		Type: "text",
		Text: text,
		Marks: []Mark{{
			Type:  "link",
			Attrs: map[string]any{"href": href},
		}},
	}
}

// TextDocument wraps a single string into a minimal document. Used for the
// reference field, whose sole content is the finding key.
func TextDocument(s string) ADF {
	return Document(Paragraph(Text(s)))
}

// FirstText extracts the first paragraph's first text run from a document.
// Every caller handles the false case uniformly instead of repeating
// shape checks on nested content.
func FirstText(doc ADF) (string, bool) {
	if doc.Type != "doc" || len(doc.Content) == 0 {
		return "", false
	}
	paragraph := doc.Content[0]
	if paragraph.Type != "paragraph" || len(paragraph.Content) == 0 {
		return "", false
	}
	run := paragraph.Content[0]
	if run.Type != "text" || run.Text == "" {
		return "", false
	}
	return run.Text, true
}

// ParseDocument decodes a raw field value into an ADF document.
func ParseDocument(raw json.RawMessage) (ADF, error) {
	var doc ADF
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ADF{}, err
	}
	return doc, nil
}
