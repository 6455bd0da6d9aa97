package db

import (
	"errors"
	"os"
	"sync"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	tmpDir, _ := os.MkdirTemp("", "linkfind-test")
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	store, err := NewStore(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustFolder(t *testing.T, store *Store, user, name, parentID string) *Folder {
	t.Helper()
	f, _, err := store.FindOrCreateFolder(user, name, parentID, FolderStyle{})
	if err != nil {
		t.Fatalf("Failed to create folder %s: %v", name, err)
	}
	return f
}

func TestFindOrCreateFolder(t *testing.T) {
	store := newTestStore(t)

	main, created, err := store.FindOrCreateFolder("alice", "YouTube", "", FolderStyle{})
	if err != nil {
		t.Fatalf("Failed to create folder: %v", err)
	}
	if !created {
		t.Error("Expected created=true for a new folder")
	}
	if main.IsSubFolder || main.ParentID != "" {
		t.Error("Expected a main folder")
	}
	if main.Color != DefaultFolderColor || main.Icon != DefaultFolderIcon {
		t.Errorf("Expected default style, got %s %s", main.Color, main.Icon)
	}

	again, created, err := store.FindOrCreateFolder("alice", "YouTube", "", FolderStyle{Color: "#000000"})
	if err != nil {
		t.Fatalf("Failed to find folder: %v", err)
	}
	if created {
		t.Error("Expected created=false for an existing folder")
	}
	if again.ID != main.ID {
		t.Errorf("Expected same folder, got %s and %s", main.ID, again.ID)
	}

	sub, created, err := store.FindOrCreateFolder("alice", "React", main.ID, FolderStyle{Icon: "⚛"})
	if err != nil {
		t.Fatalf("Failed to create sub-folder: %v", err)
	}
	if !created || !sub.IsSubFolder || sub.ParentID != main.ID || sub.Icon != "⚛" {
		t.Errorf("Unexpected sub-folder: %+v", sub)
	}

	// Same name elsewhere in the tree is a different folder.
	top, created, _ := store.FindOrCreateFolder("alice", "React", "", FolderStyle{})
	if !created || top.ID == sub.ID {
		t.Error("Expected a separate main folder named React")
	}
	other, created, _ := store.FindOrCreateFolder("bob", "YouTube", "", FolderStyle{})
	if !created || other.ID == main.ID {
		t.Error("Expected folders to be scoped per user")
	}

	if _, _, err := store.FindOrCreateFolder("alice", "  ", "", FolderStyle{}); err == nil {
		t.Error("Expected an error for an empty name")
	}
}

func TestFindOrCreateFolder_Concurrent(t *testing.T) {
	store := newTestStore(t)

	const workers = 16
	var wg sync.WaitGroup
	ids := make([]string, workers)
	created := make([]bool, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f, c, err := store.FindOrCreateFolder("alice", "GitHub", "", FolderStyle{})
			errs[i] = err
			created[i] = c
			if f != nil {
				ids[i] = f.ID
			}
		}(i)
	}
	wg.Wait()

	creations := 0
	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Errorf("worker %d got folder %s, want %s", i, ids[i], ids[0])
		}
		if created[i] {
			creations++
		}
	}
	if creations != 1 {
		t.Errorf("Expected exactly one creation, got %d", creations)
	}

	folders, _ := store.ListFolders("alice")
	if len(folders) != 1 {
		t.Errorf("Expected 1 folder, got %d", len(folders))
	}
}

func TestCreateFolder_Depth(t *testing.T) {
	store := newTestStore(t)

	main := &Folder{UserID: "alice", Name: "Reading"}
	if err := store.CreateFolder(main); err != nil {
		t.Fatalf("Failed to create folder: %v", err)
	}
	if main.ID == "" || main.Color != DefaultFolderColor {
		t.Errorf("Expected ID and defaults to be filled, got %+v", main)
	}

	sub := &Folder{UserID: "alice", Name: "Go", ParentID: main.ID}
	if err := store.CreateFolder(sub); err != nil {
		t.Fatalf("Failed to create sub-folder: %v", err)
	}
	if !sub.IsSubFolder {
		t.Error("Expected IsSubFolder=true")
	}

	err := store.CreateFolder(&Folder{UserID: "alice", Name: "Generics", ParentID: sub.ID})
	if !errors.Is(err, ErrFolderDepth) {
		t.Errorf("Expected ErrFolderDepth, got %v", err)
	}
	if _, _, err := store.FindOrCreateFolder("alice", "Generics", sub.ID, FolderStyle{}); !errors.Is(err, ErrFolderDepth) {
		t.Errorf("Expected ErrFolderDepth from find-or-create, got %v", err)
	}

	err = store.CreateFolder(&Folder{UserID: "bob", Name: "Mine", ParentID: main.ID})
	if !errors.Is(err, ErrFolderNotFound) {
		t.Errorf("Expected ErrFolderNotFound for another user's parent, got %v", err)
	}

	err = store.CreateFolder(&Folder{UserID: "alice", Name: "Reading"})
	if !errors.Is(err, ErrFolderExists) {
		t.Errorf("Expected ErrFolderExists, got %v", err)
	}
}

func TestUpdateFolder(t *testing.T) {
	store := newTestStore(t)
	f := mustFolder(t, store, "alice", "Misc", "")

	f.Name = "Later"
	f.Color = "#FF0000"
	if err := store.UpdateFolder(f); err != nil {
		t.Fatalf("Failed to update folder: %v", err)
	}

	got, err := store.GetFolder("alice", f.ID)
	if err != nil {
		t.Fatalf("Failed to get folder: %v", err)
	}
	if got.Name != "Later" || got.Color != "#FF0000" || got.Icon != DefaultFolderIcon {
		t.Errorf("Unexpected folder after update: %+v", got)
	}

	f.UserID = "bob"
	if err := store.UpdateFolder(f); !errors.Is(err, ErrFolderNotFound) {
		t.Errorf("Expected ErrFolderNotFound, got %v", err)
	}
}

func TestDeleteFolder_Cascade(t *testing.T) {
	store := newTestStore(t)
	main := mustFolder(t, store, "alice", "YouTube", "")
	sub := mustFolder(t, store, "alice", "Python", main.ID)

	link := &Link{UserID: "alice", URL: "https://youtu.be/1", FolderID: sub.ID, Tags: []string{"python"}}
	if err := store.CreateLink(link); err != nil {
		t.Fatalf("Failed to create link: %v", err)
	}

	if err := store.DeleteFolder("alice", main.ID); err != nil {
		t.Fatalf("Failed to delete folder: %v", err)
	}

	if _, err := store.GetFolder("alice", sub.ID); !errors.Is(err, ErrFolderNotFound) {
		t.Errorf("Expected sub-folder to be deleted, got %v", err)
	}
	if _, err := store.GetLink("alice", link.ID); !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("Expected link to be deleted, got %v", err)
	}
	var tags int
	store.DB().QueryRow(`SELECT COUNT(*) FROM link_tags`).Scan(&tags)
	if tags != 0 {
		t.Errorf("Expected tags to be deleted, got %d", tags)
	}

	if err := store.DeleteFolder("alice", main.ID); !errors.Is(err, ErrFolderNotFound) {
		t.Errorf("Expected ErrFolderNotFound, got %v", err)
	}
}

func TestCreateLink(t *testing.T) {
	store := newTestStore(t)
	main := mustFolder(t, store, "alice", "GitHub", "")
	sub := mustFolder(t, store, "alice", "Go", main.ID)

	link := &Link{
		UserID:   "alice",
		URL:      "https://github.com/golang/go",
		FolderID: sub.ID,
		Source:   "github",
		Tags:     []string{"Go", " go ", "language", ""},
	}
	if err := store.CreateLink(link); err != nil {
		t.Fatalf("Failed to create link: %v", err)
	}
	if link.Title != link.URL {
		t.Errorf("Expected title to default to the URL, got %q", link.Title)
	}

	got, err := store.GetLinkByURL("alice", link.URL)
	if err != nil {
		t.Fatalf("Failed to get link: %v", err)
	}
	if got.ID != link.ID || got.FolderPath != "GitHub › Go" {
		t.Errorf("Unexpected link: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "go" || got.Tags[1] != "language" {
		t.Errorf("Expected tags [go language], got %v", got.Tags)
	}

	dup := &Link{UserID: "alice", URL: link.URL, FolderID: main.ID}
	if err := store.CreateLink(dup); !errors.Is(err, ErrLinkExists) {
		t.Errorf("Expected ErrLinkExists, got %v", err)
	}

	bobFolder := mustFolder(t, store, "bob", "GitHub", "")
	if err := store.CreateLink(&Link{UserID: "bob", URL: link.URL, FolderID: bobFolder.ID}); err != nil {
		t.Errorf("Expected another user to save the same URL, got %v", err)
	}
	if err := store.CreateLink(&Link{UserID: "bob", URL: "https://a.b", FolderID: main.ID}); !errors.Is(err, ErrFolderNotFound) {
		t.Errorf("Expected ErrFolderNotFound for another user's folder, got %v", err)
	}

	count, _ := store.CountLinks("alice")
	if count != 1 {
		t.Errorf("Expected 1 link, got %d", count)
	}
}

func TestListLinks(t *testing.T) {
	store := newTestStore(t)
	yt := mustFolder(t, store, "alice", "YouTube", "")
	react := mustFolder(t, store, "alice", "React", yt.ID)
	gh := mustFolder(t, store, "alice", "GitHub", "")

	links := []*Link{
		{UserID: "alice", URL: "https://youtu.be/1", Title: "React Hooks Explained", FolderID: react.ID, Tags: []string{"react"}},
		{UserID: "alice", URL: "https://youtu.be/2", Title: "Intro", Description: "100% pure CSS", FolderID: yt.ID},
		{UserID: "alice", URL: "https://github.com/x/y", Title: "y", FolderID: gh.ID, Tags: []string{"docker"}},
	}
	for _, l := range links {
		if err := store.CreateLink(l); err != nil {
			t.Fatalf("Failed to create link: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter LinkFilter
		want   []string
	}{
		{"all newest first", LinkFilter{}, []string{"y", "Intro", "React Hooks Explained"}},
		{"limit", LinkFilter{Limit: 1}, []string{"y"}},
		{"main folder includes sub-folders", LinkFilter{FolderID: yt.ID}, []string{"Intro", "React Hooks Explained"}},
		{"sub-folder", LinkFilter{FolderID: react.ID}, []string{"React Hooks Explained"}},
		{"search title case-insensitive", LinkFilter{Search: "HOOKS"}, []string{"React Hooks Explained"}},
		{"search url", LinkFilter{Search: "github.com"}, []string{"y"}},
		{"search tag", LinkFilter{Search: "dock"}, []string{"y"}},
		{"search escapes wildcards", LinkFilter{Search: "100%"}, []string{"Intro"}},
		{"tag", LinkFilter{Tag: "React"}, []string{"React Hooks Explained"}},
		{"no match", LinkFilter{Search: "kubernetes"}, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := store.ListLinks("alice", tc.filter)
			if err != nil {
				t.Fatalf("ListLinks: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("Expected %d links, got %d", len(tc.want), len(got))
			}
			for i, l := range got {
				if l.Title != tc.want[i] {
					t.Errorf("link %d: expected %q, got %q", i, tc.want[i], l.Title)
				}
			}
		})
	}

	other, _ := store.ListLinks("bob", LinkFilter{})
	if len(other) != 0 {
		t.Errorf("Expected no links for another user, got %d", len(other))
	}
}

func TestUpdateLink(t *testing.T) {
	store := newTestStore(t)
	a := mustFolder(t, store, "alice", "A", "")
	b := mustFolder(t, store, "alice", "B", "")

	link := &Link{UserID: "alice", URL: "https://example.com", FolderID: a.ID, Tags: []string{"old"}}
	if err := store.CreateLink(link); err != nil {
		t.Fatalf("Failed to create link: %v", err)
	}

	link.Title = "Example"
	link.Description = "An example page"
	link.FolderID = b.ID
	link.IsFavorite = true
	link.Tags = []string{"new", "shiny"}
	if err := store.UpdateLink(link); err != nil {
		t.Fatalf("Failed to update link: %v", err)
	}

	got, _ := store.GetLink("alice", link.ID)
	if got.Title != "Example" || got.FolderID != b.ID || !got.IsFavorite || got.FolderPath != "B" {
		t.Errorf("Unexpected link after update: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "new" {
		t.Errorf("Expected tags to be replaced, got %v", got.Tags)
	}

	missing := *link
	missing.ID = "nope"
	if err := store.UpdateLink(&missing); !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("Expected ErrLinkNotFound, got %v", err)
	}

	if err := store.DeleteLink("alice", link.ID); err != nil {
		t.Fatalf("Failed to delete link: %v", err)
	}
	if err := store.DeleteLink("alice", link.ID); !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("Expected ErrLinkNotFound, got %v", err)
	}
}

func TestLinksWithoutDescription(t *testing.T) {
	store := newTestStore(t)
	f := mustFolder(t, store, "alice", "Misc", "")

	store.CreateLink(&Link{UserID: "alice", URL: "https://a.example", FolderID: f.ID})
	store.CreateLink(&Link{UserID: "alice", URL: "https://b.example", FolderID: f.ID, Description: "done"})
	store.CreateLink(&Link{UserID: "alice", URL: "https://c.example", FolderID: f.ID})

	got, err := store.LinksWithoutDescription("alice", 0)
	if err != nil {
		t.Fatalf("LinksWithoutDescription: %v", err)
	}
	if len(got) != 2 || got[0].URL != "https://a.example" || got[1].URL != "https://c.example" {
		t.Errorf("Unexpected links: %+v", got)
	}

	got, _ = store.LinksWithoutDescription("alice", 1)
	if len(got) != 1 {
		t.Errorf("Expected limit to apply, got %d", len(got))
	}
}
