package server

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"

	"scriptor/internal/diff"
	"scriptor/internal/document"
	"scriptor/internal/llm"
	"scriptor/internal/media"
	"scriptor/internal/pipeline"
	"scriptor/internal/review"
	"scriptor/internal/store"
)

func (s *Server) handleListTopics(w http.ResponseWriter, r *http.Request) {
	slugs, err := s.store.ListTopicSlugs(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if slugs == nil {
		slugs = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"topics": slugs})
}

func (s *Server) handleResolveTopic(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Identifier) == "" {
		writeError(w, http.StatusBadRequest, "identifier is required")
		return
	}

	slug := pipeline.SlugFromIdentifier(req.Identifier)
	exists := true
	if _, err := s.store.GetTopic(r.Context(), slug); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		exists = false
	}
	writeJSON(w, http.StatusOK, map[string]any{"slug": slug, "exists": exists})
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"models":  s.catalog.Names(),
		"default": s.catalog.DefaultModel(),
	})
}

// handleGenerate runs the full pipeline for a topic and stores the parsed
// sections. Generation failures are upstream errors (502); nothing is
// persisted unless the pipeline succeeded.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic      string `json:"topic"`
		Model      string `json:"llm"`
		CompilePDF bool   `json:"compile_pdf"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}

	slug := pipeline.Slugify(req.Topic)
	lock := s.topicLock(slug)
	lock.Lock()
	defer lock.Unlock()

	result, err := s.pipeline.Run(r.Context(), pipeline.Options{
		Topic:      req.Topic,
		Model:      req.Model,
		Workdir:    s.cfg.Storage.Workdir,
		CompilePDF: req.CompilePDF,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, "generation failed: "+err.Error())
		return
	}

	view, err := s.storeGenerated(r.Context(), slug, req.Topic, result.Body)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session":  view,
		"tex_path": result.TexPath,
		"pdf_path": result.PDFPath,
		"model":    result.Model,
	})
}

// storeGenerated replaces the topic's sections with the parsed body and
// returns the fresh session view.
func (s *Server) storeGenerated(ctx context.Context, slug, title, body string) (*review.View, error) {
	parsed := document.SectionsOrFallback(body)
	sections := make([]store.NewSection, 0, len(parsed))
	for _, sec := range parsed {
		sections = append(sections, store.NewSection{
			OrderIndex: sec.Index,
			Title:      sec.Title,
			Content:    strings.TrimSpace(sec.Body),
		})
	}

	topic, err := s.store.ReplaceTopicSections(ctx, slug, title, sections)
	if err != nil {
		return nil, err
	}
	return review.BuildView(ctx, s.store, topic)
}

func (s *Server) handleSessionInit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Identifier) == "" {
		writeError(w, http.StatusBadRequest, "identifier is required")
		return
	}

	topic, ok := s.lookupTopic(w, r, req.Identifier)
	if !ok {
		return
	}
	view, err := review.BuildView(r.Context(), s.store, topic)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// lookupTopic resolves an identifier to a stored topic, writing the 404 or
// 500 itself when resolution fails.
func (s *Server) lookupTopic(w http.ResponseWriter, r *http.Request, identifier string) (*store.Topic, bool) {
	slug := pipeline.SlugFromIdentifier(identifier)
	topic, err := s.store.GetTopic(r.Context(), slug)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("topic %q not found", slug))
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return topic, true
}

// sectionRequest is the shared shape of section-scoped requests.
type sectionRequest struct {
	Identifier   string `json:"identifier"`
	SectionIndex int    `json:"section_index"`
	Body         string `json:"body"`
	Instruction  string `json:"instruction"`
	Message      string `json:"message"`
	Model        string `json:"llm"`
}

// lookupSection resolves identifier + 1-based index to a stored section.
func (s *Server) lookupSection(w http.ResponseWriter, r *http.Request, req sectionRequest) (*store.Topic, *store.Section, bool) {
	if req.SectionIndex < 1 {
		writeError(w, http.StatusBadRequest, "section_index must be >= 1")
		return nil, nil, false
	}
	topic, ok := s.lookupTopic(w, r, req.Identifier)
	if !ok {
		return nil, nil, false
	}
	sec, err := s.store.GetSection(r.Context(), topic.ID, req.SectionIndex)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound,
			fmt.Sprintf("topic %q has no section %d", topic.Slug, req.SectionIndex))
		return nil, nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, nil, false
	}
	return topic, sec, true
}

// handleSectionSave replaces a section's working body and snapshots it.
func (s *Server) handleSectionSave(w http.ResponseWriter, r *http.Request) {
	var req sectionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	topic, sec, ok := s.lookupSection(w, r, req)
	if !ok {
		return
	}

	body := strings.TrimSpace(req.Body)
	if err := s.store.SaveSectionBody(r.Context(), sec.ID, body); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	anchor := fmt.Sprintf("section%d", sec.OrderIndex)
	history, err := s.store.History(r.Context(), topic.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"section_index": sec.OrderIndex,
		"body":          body,
		"html":          document.RenderBody(body, anchor),
		"diff_html":     diff.CompareHTML(sec.ApprovedContent, body),
		"history":       history,
	})
}

func (s *Server) handleSectionDiff(w http.ResponseWriter, r *http.Request) {
	var req sectionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SectionIndex < 1 {
		writeError(w, http.StatusBadRequest, "section_index must be >= 1")
		return
	}
	topic, ok := s.lookupTopic(w, r, req.Identifier)
	if !ok {
		return
	}
	diffHTML, err := review.SectionDiffHTML(r.Context(), s.store, topic.ID, req.SectionIndex)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound,
			fmt.Sprintf("topic %q has no section %d", topic.Slug, req.SectionIndex))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"section_index": req.SectionIndex,
		"diff_html":     diffHTML,
	})
}

// handleSectionRender previews an edited body without persisting it.
func (s *Server) handleSectionRender(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Body      string `json:"body"`
		SectionID string `json:"section_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SectionID == "" {
		req.SectionID = "preview"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"html": document.RenderBody(req.Body, req.SectionID),
	})
}

const rewriteSystemPrompt = `You are an expert LaTeX editor. Rewrite the given section body
following the user's instruction. Preserve \subsection structure and inline citations
unless the instruction says otherwise. Output ONLY the revised LaTeX body, no commentary.`

// handleSectionRewrite asks a model to revise the section body per an
// instruction, then saves the result as the new working content.
func (s *Server) handleSectionRewrite(w http.ResponseWriter, r *http.Request) {
	var req sectionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Instruction) == "" {
		writeError(w, http.StatusBadRequest, "instruction is required")
		return
	}
	topic, sec, ok := s.lookupSection(w, r, req)
	if !ok {
		return
	}

	client, err := s.catalog.Client(r.Context(), req.Model)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	reply, err := client.Chat(r.Context(), []llm.Message{
		{Role: "system", Content: rewriteSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Instruction: %s\n\nSection %q:\n%s",
			req.Instruction, sec.Title, sec.Content)},
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, "rewrite failed: "+err.Error())
		return
	}

	body := strings.TrimSpace(pipeline.FilterSafe(reply))
	if body == "" {
		writeError(w, http.StatusBadGateway, "model returned no usable rewrite")
		return
	}
	if err := s.store.SaveSectionBody(r.Context(), sec.ID, body); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	anchor := fmt.Sprintf("section%d", sec.OrderIndex)
	history, err := s.store.History(r.Context(), topic.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"section_index": sec.OrderIndex,
		"body":          body,
		"html":          document.RenderBody(body, anchor),
		"diff_html":     diff.CompareHTML(sec.ApprovedContent, body),
		"history":       history,
	})
}

const chatSystemPrompt = `You are a research assistant discussing one section of a LaTeX handout.
Answer questions about the section's content. Do not output a full rewrite unless asked.`

// handleSectionChat answers a question about a section without mutating it.
func (s *Server) handleSectionChat(w http.ResponseWriter, r *http.Request) {
	var req sectionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	_, sec, ok := s.lookupSection(w, r, req)
	if !ok {
		return
	}

	client, err := s.catalog.Client(r.Context(), req.Model)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	reply, err := client.Chat(r.Context(), []llm.Message{
		{Role: "system", Content: chatSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Section %q:\n%s\n\nQuestion: %s",
			sec.Title, sec.Content, req.Message)},
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, "chat failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"section_index": sec.OrderIndex,
		"reply":         reply,
	})
}

// handleSectionTool dispatches a research tool call. Tool failures come back
// as structured results with status "error"; only an unknown tool name is a
// client error.
func (s *Server) handleSectionTool(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tool       string `json:"tool"`
		Query      string `json:"query"`
		Filename   string `json:"filename"`
		MaxResults int    `json:"max_results"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	ctx := r.Context()
	switch req.Tool {
	case "internet_search":
		writeJSON(w, http.StatusOK, s.toolset.InternetSearch(ctx, req.Query, req.MaxResults))
	case "wikipedia_lookup":
		writeJSON(w, http.StatusOK, s.toolset.WikipediaLookup(ctx, req.Query))
	case "arxiv_search":
		writeJSON(w, http.StatusOK, s.toolset.ArxivSearch(ctx, req.Query, req.MaxResults))
	case "perplexity_search":
		writeJSON(w, http.StatusOK, s.toolset.PerplexitySearch(ctx, req.Query))
	case "local_file_search":
		writeJSON(w, http.StatusOK, s.toolset.LocalFileSearch(req.Query, req.Filename))
	case "deep_search":
		plan, results := s.toolset.DeepSearch(ctx, req.Query, req.MaxResults)
		writeJSON(w, http.StatusOK, map[string]any{"plan": plan, "results": results})
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown tool %q", req.Tool))
	}
}

// handleSectionMedia plans and renders a visual asset for a section, and
// returns an HTML fragment the client can splice into the section body.
func (s *Server) handleSectionMedia(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier   string `json:"identifier"`
		SectionIndex int    `json:"section_index"`
		Request      string `json:"request"`
		Model        string `json:"llm"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Request) == "" {
		writeError(w, http.StatusBadRequest, "request is required")
		return
	}

	topic, sec, ok := s.lookupSection(w, r, sectionRequest{
		Identifier: req.Identifier, SectionIndex: req.SectionIndex,
	})
	if !ok {
		return
	}

	client, err := s.catalog.Client(r.Context(), req.Model)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := review.BuildView(r.Context(), s.store, topic)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	planner := media.NewPlanner(client)
	spec := planner.Plan(r.Context(), req.Request, view.Outline, sec.Content, topic.Slug)

	path, err := s.renderer.Generate(spec, topic.Slug)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "render failed: "+err.Error())
		return
	}

	fragment := fmt.Sprintf(
		"<figure class='generated-media'><img src='/assets/%s/media/%s' alt='%s'/><figcaption>%s</figcaption></figure>",
		topic.Slug, spec.Filename, html.EscapeString(spec.Title), html.EscapeString(spec.Title))
	writeJSON(w, http.StatusOK, map[string]any{
		"section_index": sec.OrderIndex,
		"kind":          spec.Kind.String(),
		"path":          path,
		"fragment":      fragment,
	})
}

// handlePromote copies every section's working content into the approved
// baseline in one transaction and returns the refreshed session.
func (s *Server) handlePromote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	topic, ok := s.lookupTopic(w, r, req.Identifier)
	if !ok {
		return
	}

	if err := s.store.PromoteAll(r.Context(), topic.ID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	view, err := review.BuildView(r.Context(), s.store, topic)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleRegenerate reruns the pipeline for an existing topic. The prior
// sections and their version history are replaced wholesale.
func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
		Model      string `json:"llm"`
		CompilePDF bool   `json:"compile_pdf"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	topic, ok := s.lookupTopic(w, r, req.Identifier)
	if !ok {
		return
	}

	lock := s.topicLock(topic.Slug)
	lock.Lock()
	defer lock.Unlock()

	result, err := s.pipeline.Run(r.Context(), pipeline.Options{
		Topic:      topic.Title,
		Model:      req.Model,
		Workdir:    s.cfg.Storage.Workdir,
		CompilePDF: req.CompilePDF,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, "regeneration failed: "+err.Error())
		return
	}

	view, err := s.storeGenerated(r.Context(), topic.Slug, topic.Title, result.Body)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session":  view,
		"tex_path": result.TexPath,
		"pdf_path": result.PDFPath,
		"model":    result.Model,
	})
}
