package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const folderColumns = `id, user_id, name, parent_id, is_sub_folder, color, icon, description, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFolder(row rowScanner) (*Folder, error) {
	var f Folder
	var parentID sql.NullString
	err := row.Scan(&f.ID, &f.UserID, &f.Name, &parentID, &f.IsSubFolder,
		&f.Color, &f.Icon, &f.Description, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	f.ParentID = parentID.String
	return &f, nil
}

func newFolder(userID, name, parentID string, style FolderStyle) *Folder {
	now := time.Now().UTC()
	f := &Folder{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		ParentID:    parentID,
		IsSubFolder: parentID != "",
		Color:       style.Color,
		Icon:        style.Icon,
		Description: style.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if f.Color == "" {
		f.Color = DefaultFolderColor
	}
	if f.Icon == "" {
		f.Icon = DefaultFolderIcon
	}
	return f
}

// checkParent verifies that parentID is a main folder owned by userID.
func (s *Store) checkParent(userID, parentID string) error {
	if parentID == "" {
		return nil
	}
	parent, err := s.GetFolder(userID, parentID)
	if err != nil {
		return fmt.Errorf("parent: %w", err)
	}
	if parent.ParentID != "" {
		return ErrFolderDepth
	}
	return nil
}

func (s *Store) GetFolder(userID, id string) (*Folder, error) {
	row := s.db.QueryRow(`SELECT `+folderColumns+` FROM folders WHERE user_id = ? AND id = ?`, userID, id)
	f, err := scanFolder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFolderNotFound
	}
	return f, err
}

func (s *Store) findFolder(userID, name, parentID string) (*Folder, error) {
	row := s.db.QueryRow(`SELECT `+folderColumns+` FROM folders
		WHERE user_id = ? AND name = ? AND IFNULL(parent_id, '') = ?`, userID, name, parentID)
	f, err := scanFolder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFolderNotFound
	}
	return f, err
}

// FindOrCreateFolder returns the folder called name under parentID (empty for
// a main folder), creating it with style when missing. The boolean reports
// whether this call created it. Concurrent calls for the same name resolve to
// one folder.
func (s *Store) FindOrCreateFolder(userID, name, parentID string, style FolderStyle) (*Folder, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, fmt.Errorf("folder name is required")
	}

	f, err := s.findFolder(userID, name, parentID)
	if err == nil {
		return f, false, nil
	}
	if !errors.Is(err, ErrFolderNotFound) {
		return nil, false, err
	}

	if err := s.checkParent(userID, parentID); err != nil {
		return nil, false, err
	}

	f = newFolder(userID, name, parentID, style)
	res, err := s.db.Exec(`INSERT OR IGNORE INTO folders (`+folderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.UserID, f.Name, nullString(f.ParentID), f.IsSubFolder,
		f.Color, f.Icon, f.Description, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		// Another writer may have created it between our read and write.
		if existing, ferr := s.findFolder(userID, name, parentID); ferr == nil {
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to create folder %q: %w", name, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		existing, err := s.findFolder(userID, name, parentID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	return f, true, nil
}

// CreateFolder inserts f, filling in ID, defaults and timestamps.
func (s *Store) CreateFolder(f *Folder) error {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return fmt.Errorf("folder name is required")
	}
	if err := s.checkParent(f.UserID, f.ParentID); err != nil {
		return err
	}

	created := newFolder(f.UserID, f.Name, f.ParentID, FolderStyle{
		Color:       f.Color,
		Icon:        f.Icon,
		Description: f.Description,
	})

	_, err := s.db.Exec(`INSERT INTO folders (`+folderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		created.ID, created.UserID, created.Name, nullString(created.ParentID), created.IsSubFolder,
		created.Color, created.Icon, created.Description, created.CreatedAt, created.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrFolderExists
	}
	if err != nil {
		return err
	}

	*f = *created
	return nil
}

// ListFolders returns main folders first, then sub-folders, each by name.
func (s *Store) ListFolders(userID string) ([]Folder, error) {
	rows, err := s.db.Query(`SELECT `+folderColumns+` FROM folders WHERE user_id = ?
		ORDER BY parent_id IS NOT NULL, name COLLATE NOCASE`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var folders []Folder
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		folders = append(folders, *f)
	}
	return folders, rows.Err()
}

// UpdateFolder saves name, color, icon and description. Parent and owner
// never change.
func (s *Store) UpdateFolder(f *Folder) error {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return fmt.Errorf("folder name is required")
	}
	if f.Color == "" {
		f.Color = DefaultFolderColor
	}
	if f.Icon == "" {
		f.Icon = DefaultFolderIcon
	}
	f.UpdatedAt = time.Now().UTC()

	res, err := s.db.Exec(`UPDATE folders SET name = ?, color = ?, icon = ?, description = ?, updated_at = ?
		WHERE user_id = ? AND id = ?`,
		f.Name, f.Color, f.Icon, f.Description, f.UpdatedAt, f.UserID, f.ID)
	if isUniqueViolation(err) {
		return ErrFolderExists
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFolderNotFound
	}
	return nil
}

// DeleteFolder removes the folder, its sub-folders and every link inside them.
func (s *Store) DeleteFolder(userID, id string) error {
	res, err := s.db.Exec(`DELETE FROM folders WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFolderNotFound
	}
	return nil
}

// FolderLinkCounts returns how many links each folder holds directly.
func (s *Store) FolderLinkCounts(userID string) (map[string]int, error) {
	rows, err := s.db.Query(`SELECT folder_id, COUNT(*) FROM links WHERE user_id = ? GROUP BY folder_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}
