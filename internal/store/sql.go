package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Store wraps a SQL database holding topics, sections, and versions. The
// driver is chosen from the DSN: postgres:// URLs use lib/pq, anything
// else is treated as a SQLite file path.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the database named by dsn and ensures the schema.
func Open(dsn string) (*Store, error) {
	driver := "sqlite3"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "postgres"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if driver == "sqlite3" {
		// SQLite does not enforce foreign keys unless asked, and the
		// section -> version cascade depends on them.
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &Store{db: db, driver: driver}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	idCol := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == "postgres" {
		idCol = "BIGSERIAL PRIMARY KEY"
	}

	queries := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS topics (
			id %s,
			slug TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'draft',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`, idCol),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS sections (
			id %s,
			topic_id BIGINT NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
			order_index INTEGER NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			approved_content TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`, idCol),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS section_versions (
			id %s,
			section_id BIGINT NOT NULL REFERENCES sections(id) ON DELETE CASCADE,
			label TEXT NOT NULL DEFAULT 'working',
			content TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`, idCol),
		`CREATE INDEX IF NOT EXISTS idx_sections_topic ON sections(topic_id, order_index)`,
		`CREATE INDEX IF NOT EXISTS idx_versions_section ON section_versions(section_id)`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// rebind converts ?-style placeholders to the $n form Postgres expects.
func (s *Store) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&sb, "$%d", n)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// --- Topics ---

// ListTopicSlugs returns every stored topic slug in alphabetical order.
func (s *Store) ListTopicSlugs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT slug FROM topics ORDER BY slug")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

// GetTopic looks a topic up by slug.
func (s *Store) GetTopic(ctx context.Context, slug string) (*Topic, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		"SELECT id, slug, title, status, created_at, updated_at FROM topics WHERE slug = ?"), slug)

	var t Topic
	err := row.Scan(&t.ID, &t.Slug, &t.Title, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ReplaceTopicSections upserts the topic and replaces its entire section
// list. Prior sections and their versions are hard-deleted before the new
// ones are written; each new section starts with approved content equal to
// working content and a single "initial" version. Version history of the
// replaced sections does not survive regeneration.
func (s *Store) ReplaceTopicSections(ctx context.Context, slug, title string, sections []NewSection) (*Topic, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	var topic Topic
	row := tx.QueryRowContext(ctx, s.rebind(
		"SELECT id, slug, title, status, created_at, updated_at FROM topics WHERE slug = ?"), slug)
	err = row.Scan(&topic.ID, &topic.Slug, &topic.Title, &topic.Status, &topic.CreatedAt, &topic.UpdatedAt)
	switch {
	case err == sql.ErrNoRows:
		topic = Topic{Slug: slug, Title: title, Status: "draft", CreatedAt: now, UpdatedAt: now}
		topic.ID, err = s.insertReturningID(ctx, tx,
			"INSERT INTO topics (slug, title, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			topic.Slug, topic.Title, topic.Status, topic.CreatedAt, topic.UpdatedAt)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		topic.Title = title
		topic.UpdatedAt = now
		if _, err := tx.ExecContext(ctx, s.rebind(
			"UPDATE topics SET title = ?, updated_at = ? WHERE id = ?"),
			topic.Title, topic.UpdatedAt, topic.ID); err != nil {
			return nil, err
		}
		// ON DELETE CASCADE removes the sections' versions with them.
		if _, err := tx.ExecContext(ctx, s.rebind(
			"DELETE FROM sections WHERE topic_id = ?"), topic.ID); err != nil {
			return nil, err
		}
	}

	for _, sec := range sections {
		sectionID, err := s.insertReturningID(ctx, tx,
			"INSERT INTO sections (topic_id, order_index, title, content, approved_content, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			topic.ID, sec.OrderIndex, sec.Title, sec.Content, sec.Content, now, now)
		if err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, s.rebind(
			"INSERT INTO section_versions (section_id, label, content, created_at) VALUES (?, ?, ?, ?)"),
			sectionID, "initial", sec.Content, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &topic, nil
}

func (s *Store) insertReturningID(ctx context.Context, tx *sql.Tx, query string, args ...any) (int64, error) {
	if s.driver == "postgres" {
		var id int64
		err := tx.QueryRowContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// --- Sections ---

// TopicSections returns a topic's sections in document order.
func (s *Store) TopicSections(ctx context.Context, topicID int64) ([]Section, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT id, topic_id, order_index, title, content, approved_content, created_at, updated_at
		 FROM sections WHERE topic_id = ? ORDER BY order_index`), topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []Section
	for rows.Next() {
		var sec Section
		if err := rows.Scan(&sec.ID, &sec.TopicID, &sec.OrderIndex, &sec.Title,
			&sec.Content, &sec.ApprovedContent, &sec.CreatedAt, &sec.UpdatedAt); err != nil {
			return nil, err
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

// GetSection fetches one section of a topic by its 1-based order index.
func (s *Store) GetSection(ctx context.Context, topicID int64, orderIndex int) (*Section, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id, topic_id, order_index, title, content, approved_content, created_at, updated_at
		 FROM sections WHERE topic_id = ? AND order_index = ?`), topicID, orderIndex)

	var sec Section
	err := row.Scan(&sec.ID, &sec.TopicID, &sec.OrderIndex, &sec.Title,
		&sec.Content, &sec.ApprovedContent, &sec.CreatedAt, &sec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sec, nil
}

// SaveSectionBody replaces the section's working content and appends a
// "working" version. The approved baseline is untouched.
func (s *Store) SaveSectionBody(ctx context.Context, sectionID int64, body string) error {
	return s.Snapshot(ctx, sectionID, "working", body, true)
}

// Snapshot appends a labeled version of content to the section's history.
// When updateWorking is set, the section's working content is replaced with
// the snapshot as well. Existing versions are never mutated.
func (s *Store) Snapshot(ctx context.Context, sectionID int64, label, content string, updateWorking bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if updateWorking {
		res, err := tx.ExecContext(ctx, s.rebind(
			"UPDATE sections SET content = ?, updated_at = ? WHERE id = ?"), content, now, sectionID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
	}
	if _, err := tx.ExecContext(ctx, s.rebind(
		"INSERT INTO section_versions (section_id, label, content, created_at) VALUES (?, ?, ?, ?)"),
		sectionID, label, content, now); err != nil {
		return err
	}
	return tx.Commit()
}

// Promote copies the section's working content into the approved baseline
// and appends an "approved" version. Working content is unchanged.
func (s *Store) Promote(ctx context.Context, sectionID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var topicID int64
	var content string
	row := tx.QueryRowContext(ctx, s.rebind(
		"SELECT topic_id, content FROM sections WHERE id = ?"), sectionID)
	if err := row.Scan(&topicID, &content); err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, s.rebind(
		"UPDATE sections SET approved_content = content, updated_at = ? WHERE id = ?"), now, sectionID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, s.rebind(
		"INSERT INTO section_versions (section_id, label, content, created_at) VALUES (?, ?, ?, ?)"),
		sectionID, "approved", content, now); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, s.rebind(
		"UPDATE topics SET updated_at = ? WHERE id = ?"), now, topicID); err != nil {
		return err
	}
	return tx.Commit()
}

// PromoteAll promotes every section of a topic in one transaction: each
// approved baseline becomes its working content and gains an "approved"
// version. Either all sections promote or none do.
func (s *Store) PromoteAll(ctx context.Context, topicID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, s.rebind(
		"SELECT id, content FROM sections WHERE topic_id = ? ORDER BY order_index"), topicID)
	if err != nil {
		return err
	}
	type snapshot struct {
		id      int64
		content string
	}
	var snapshots []snapshot
	for rows.Next() {
		var snap snapshot
		if err := rows.Scan(&snap.id, &snap.content); err != nil {
			rows.Close()
			return err
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	now := time.Now().UTC()
	for _, snap := range snapshots {
		if _, err := tx.ExecContext(ctx, s.rebind(
			"UPDATE sections SET approved_content = content, updated_at = ? WHERE id = ?"), now, snap.id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.rebind(
			"INSERT INTO section_versions (section_id, label, content, created_at) VALUES (?, ?, ?, ?)"),
			snap.id, "approved", snap.content, now); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, s.rebind(
		"UPDATE topics SET updated_at = ? WHERE id = ?"), now, topicID); err != nil {
		return err
	}
	return tx.Commit()
}

// --- Versions ---

// SectionVersions returns a section's raw version records, newest first.
func (s *Store) SectionVersions(ctx context.Context, sectionID int64) ([]SectionVersion, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT id, section_id, label, content, created_at FROM section_versions
		 WHERE section_id = ? ORDER BY created_at DESC, id DESC`), sectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []SectionVersion
	for rows.Next() {
		var v SectionVersion
		if err := rows.Scan(&v.ID, &v.SectionID, &v.Label, &v.Content, &v.CreatedAt); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// History lists every version of every section of a topic, newest first,
// labeled "{section title} ({label})". A topic with no versions yields a
// single placeholder row so UIs never render an empty table.
func (s *Store) History(ctx context.Context, topicID int64) ([]HistoryRow, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT sec.title, v.label, v.created_at
		 FROM section_versions v
		 JOIN sections sec ON sec.id = v.section_id
		 WHERE sec.topic_id = ?
		 ORDER BY v.created_at DESC, v.id DESC`), topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []HistoryRow
	for rows.Next() {
		var title, label string
		var createdAt time.Time
		if err := rows.Scan(&title, &label, &createdAt); err != nil {
			return nil, err
		}
		history = append(history, HistoryRow{
			Name:      fmt.Sprintf("%s (%s)", title, label),
			Timestamp: createdAt.Format(historyTimeLayout),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(history) == 0 {
		history = append(history, HistoryRow{
			Name:      "No versions recorded",
			Timestamp: time.Now().UTC().Format(historyTimeLayout),
		})
	}
	return history, nil
}
