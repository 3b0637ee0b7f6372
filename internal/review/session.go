// Package review assembles the editing-session view of a topic: rendered
// working and approved documents, the opening diff, and version history.
package review

import (
	"context"
	"fmt"
	"strings"

	"scriptor/internal/diff"
	"scriptor/internal/document"
	"scriptor/internal/store"
)

// SectionPayload is one section as the review UI consumes it.
type SectionPayload struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	Body  string `json:"body"`
	HTML  string `json:"html"`
}

// View is everything a client needs to open a review session.
type View struct {
	Slug         string             `json:"slug"`
	Title        string             `json:"title"`
	Status       string             `json:"status"`
	Sections     []SectionPayload   `json:"sections"`
	Approved     []SectionPayload   `json:"approved_sections"`
	SectionsHTML string             `json:"sections_html"`
	OriginalHTML string             `json:"original_html"`
	DiffHTML     string             `json:"diff_html"`
	Outline      string             `json:"outline"`
	History      []store.HistoryRow `json:"history"`
}

// BuildView loads the topic's sections and renders both snapshots. The diff
// panel opens on the first section; identical snapshots render as an empty
// diff rather than an error.
func BuildView(ctx context.Context, st *store.Store, topic *store.Topic) (*View, error) {
	sections, err := st.TopicSections(ctx, topic.ID)
	if err != nil {
		return nil, err
	}
	history, err := st.History(ctx, topic.ID)
	if err != nil {
		return nil, err
	}

	view := &View{
		Slug:    topic.Slug,
		Title:   topic.Title,
		Status:  topic.Status,
		History: history,
	}

	working := make([]document.RenderedSection, 0, len(sections))
	approved := make([]document.RenderedSection, 0, len(sections))
	outline := make([]string, 0, len(sections))
	for _, sec := range sections {
		anchor := fmt.Sprintf("section%d", sec.OrderIndex)
		workingHTML := document.RenderBody(sec.Content, anchor)
		approvedHTML := document.RenderBody(sec.ApprovedContent, anchor)

		view.Sections = append(view.Sections, SectionPayload{
			Index: sec.OrderIndex,
			Title: sec.Title,
			Body:  sec.Content,
			HTML:  workingHTML,
		})
		view.Approved = append(view.Approved, SectionPayload{
			Index: sec.OrderIndex,
			Title: sec.Title,
			Body:  sec.ApprovedContent,
			HTML:  approvedHTML,
		})
		working = append(working, document.RenderedSection{
			Index: sec.OrderIndex, Title: sec.Title, HTML: workingHTML,
		})
		approved = append(approved, document.RenderedSection{
			Index: sec.OrderIndex, Title: sec.Title, HTML: approvedHTML,
		})
		outline = append(outline, fmt.Sprintf("%d. %s", sec.OrderIndex, sec.Title))
	}

	view.SectionsHTML = document.RenderDocumentHTML(working)
	view.OriginalHTML = document.RenderDocumentHTML(approved)
	view.Outline = strings.Join(outline, "\n")
	if len(sections) > 0 {
		view.DiffHTML = diff.CompareHTML(sections[0].ApprovedContent, sections[0].Content)
	}
	return view, nil
}

// SectionDiffHTML renders the approved-vs-working diff for one section of a
// topic, addressed by 1-based index.
func SectionDiffHTML(ctx context.Context, st *store.Store, topicID int64, index int) (string, error) {
	sec, err := st.GetSection(ctx, topicID, index)
	if err != nil {
		return "", err
	}
	return diff.CompareHTML(sec.ApprovedContent, sec.Content), nil
}
