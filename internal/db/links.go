package db

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const tagSep = "\x1f"

const linkSelect = `SELECT l.id, l.user_id, l.url, l.title, l.description, l.thumbnail, l.source,
		l.folder_id, IFNULL(p.name || ' › ', '') || f.name, l.is_favorite, l.author,
		l.created_at, l.updated_at,
		(SELECT GROUP_CONCAT(t.tag, char(31)) FROM link_tags t WHERE t.link_id = l.id)
	FROM links l
	JOIN folders f ON f.id = l.folder_id
	LEFT JOIN folders p ON p.id = f.parent_id`

func scanLink(row rowScanner) (*Link, error) {
	var l Link
	var tags sql.NullString
	err := row.Scan(&l.ID, &l.UserID, &l.URL, &l.Title, &l.Description, &l.Thumbnail, &l.Source,
		&l.FolderID, &l.FolderPath, &l.IsFavorite, &l.Author,
		&l.CreatedAt, &l.UpdatedAt, &tags)
	if err != nil {
		return nil, err
	}
	l.Tags = splitTags(tags.String)
	return &l, nil
}

func splitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	tags := strings.Split(s, tagSep)
	sort.Strings(tags)
	return tags
}

// NormalizeTags trims, lower-cases and de-duplicates tags, dropping empties.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func writeTags(tx *sql.Tx, linkID string, tags []string) error {
	if _, err := tx.Exec(`DELETE FROM link_tags WHERE link_id = ?`, linkID); err != nil {
		return err
	}
	for _, tag := range tags {
		if _, err := tx.Exec(`INSERT INTO link_tags (link_id, tag) VALUES (?, ?)`, linkID, tag); err != nil {
			return err
		}
	}
	return nil
}

// CreateLink saves l into one of its owner's folders. A URL can be saved once
// per user; a second attempt returns ErrLinkExists.
func (s *Store) CreateLink(l *Link) error {
	if l.URL == "" {
		return fmt.Errorf("link URL is required")
	}
	folder, err := s.GetFolder(l.UserID, l.FolderID)
	if err != nil {
		return err
	}

	l.ID = uuid.NewString()
	if l.Title == "" {
		l.Title = l.URL
	}
	if l.Source == "" {
		l.Source = "other"
	}
	l.Tags = NormalizeTags(l.Tags)
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO links (id, user_id, url, title, description, thumbnail, source, folder_id, is_favorite, author, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.UserID, l.URL, l.Title, l.Description, l.Thumbnail, l.Source,
		l.FolderID, l.IsFavorite, l.Author, l.CreatedAt, l.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrLinkExists
	}
	if err != nil {
		return err
	}
	if err := writeTags(tx, l.ID, l.Tags); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	l.FolderPath = folder.Name
	if folder.ParentID != "" {
		if parent, err := s.GetFolder(l.UserID, folder.ParentID); err == nil {
			l.FolderPath = parent.Name + " › " + folder.Name
		}
	}
	return nil
}

func (s *Store) GetLink(userID, id string) (*Link, error) {
	l, err := scanLink(s.db.QueryRow(linkSelect+` WHERE l.user_id = ? AND l.id = ?`, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLinkNotFound
	}
	return l, err
}

func (s *Store) GetLinkByURL(userID, url string) (*Link, error) {
	l, err := scanLink(s.db.QueryRow(linkSelect+` WHERE l.user_id = ? AND l.url = ?`, userID, url))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLinkNotFound
	}
	return l, err
}

// ListLinks returns the user's links, newest first.
func (s *Store) ListLinks(userID string, filter LinkFilter) ([]Link, error) {
	query := linkSelect + ` WHERE l.user_id = ?`
	args := []any{userID}

	if filter.FolderID != "" {
		query += ` AND (l.folder_id = ? OR f.parent_id = ?)`
		args = append(args, filter.FolderID, filter.FolderID)
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		pattern := likePattern(q)
		query += ` AND (l.title LIKE ? ESCAPE '\' OR l.description LIKE ? ESCAPE '\' OR l.url LIKE ? ESCAPE '\'
			OR EXISTS (SELECT 1 FROM link_tags t WHERE t.link_id = l.id AND t.tag LIKE ? ESCAPE '\'))`
		args = append(args, pattern, pattern, pattern, pattern)
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		query += ` AND EXISTS (SELECT 1 FROM link_tags t WHERE t.link_id = l.id AND t.tag = ? COLLATE NOCASE)`
		args = append(args, tag)
	}

	query += ` ORDER BY l.created_at DESC, l.rowid DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	return s.queryLinks(query, args...)
}

// LinksWithoutDescription returns links still waiting for a description,
// oldest first.
func (s *Store) LinksWithoutDescription(userID string, limit int) ([]Link, error) {
	query := linkSelect + ` WHERE l.user_id = ? AND l.description = '' ORDER BY l.created_at, l.rowid`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryLinks(query, args...)
}

func (s *Store) queryLinks(query string, args ...any) ([]Link, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []Link{}
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, *l)
	}
	return links, rows.Err()
}

// UpdateLink saves every editable field of l and replaces its tags. Moving a
// link checks that the target folder belongs to the same user.
func (s *Store) UpdateLink(l *Link) error {
	if _, err := s.GetFolder(l.UserID, l.FolderID); err != nil {
		return err
	}
	if l.Title == "" {
		l.Title = l.URL
	}
	l.Tags = NormalizeTags(l.Tags)
	l.UpdatedAt = time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE links SET title = ?, description = ?, thumbnail = ?, source = ?, folder_id = ?,
		is_favorite = ?, author = ?, updated_at = ? WHERE user_id = ? AND id = ?`,
		l.Title, l.Description, l.Thumbnail, l.Source, l.FolderID,
		l.IsFavorite, l.Author, l.UpdatedAt, l.UserID, l.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrLinkNotFound
	}
	if err := writeTags(tx, l.ID, l.Tags); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) DeleteLink(userID, id string) error {
	res, err := s.db.Exec(`DELETE FROM links WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrLinkNotFound
	}
	return nil
}

func (s *Store) CountLinks(userID string) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM links WHERE user_id = ?`, userID).Scan(&count)
	return count, err
}
