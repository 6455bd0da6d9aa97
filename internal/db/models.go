package db

import "time"

const (
	DefaultFolderColor = "#3B82F6"
	DefaultFolderIcon  = "📁"
)

// Folder is a node of a user's two-level folder tree. ParentID is empty for
// main folders.
type Folder struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	ParentID    string    `json:"parent_id,omitempty"`
	IsSubFolder bool      `json:"is_sub_folder"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FolderStyle holds the presentation fields applied when a folder is created.
type FolderStyle struct {
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
}

type Link struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Tags        []string  `json:"tags"`
	FolderID    string    `json:"folder_id"`
	FolderPath  string    `json:"folder_path,omitempty"` // "Main › Sub", read only
	Source      string    `json:"source"`                // youtube, github, medium, twitter, stackoverflow, reddit, other
	IsFavorite  bool      `json:"is_favorite"`
	Author      string    `json:"author,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LinkFilter narrows ListLinks. Zero values match everything.
type LinkFilter struct {
	FolderID string // the folder and its sub-folders
	Search   string
	Tag      string
	Limit    int
}
