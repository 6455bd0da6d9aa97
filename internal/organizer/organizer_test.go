package organizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/linkfind/internal/classify"
	"github.com/user/linkfind/internal/db"
	"github.com/user/linkfind/internal/extract"
)

const pythonTitle = "Python pandas tutorial for data analysis"

type fakeExtractor struct {
	mu    sync.Mutex
	pages map[string]extract.Metadata
	calls int
}

func (f *fakeExtractor) Extract(_ context.Context, rawURL string) (*extract.Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	md, ok := f.pages[rawURL]
	if !ok {
		return &extract.Metadata{Title: rawURL, Source: extract.SourceFor(rawURL), Tags: []string{}}, errors.New("fetch failed")
	}
	md.Tags = append([]string{}, md.Tags...)
	if md.Source == "" {
		md.Source = extract.SourceFor(rawURL)
	}
	return &md, nil
}

type fakeEnricher struct {
	summary *Summary
	err     error
	calls   int
}

func (f *fakeEnricher) Summarize(_ context.Context, _, _ string) (*Summary, error) {
	f.calls++
	return f.summary, f.err
}

func newTestOrganizer(t *testing.T, pages map[string]extract.Metadata, opts Options) (*Organizer, *db.Store, *fakeExtractor) {
	t.Helper()
	tmpDir, _ := os.MkdirTemp("", "linkfind-test")
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	store, err := db.NewStore(tmpDir)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	tables, err := classify.DefaultTables()
	require.NoError(t, err)

	fx := &fakeExtractor{pages: pages}
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, classify.New(tables), fx, opts), store, fx
}

func TestAddLink_CreatesHierarchy(t *testing.T) {
	pages := map[string]extract.Metadata{
		"https://www.youtube.com/watch?v=1": {Title: pythonTitle, Description: "Dataframes from scratch", Tags: []string{"python"}},
		"https://youtu.be/2":                {Title: pythonTitle + " part 2"},
	}
	o, store, fx := newTestOrganizer(t, pages, Options{})
	ctx := context.Background()

	res, err := o.AddLink(ctx, AddRequest{UserID: "alice", URL: "https://www.youtube.com/watch?v=1"})
	require.NoError(t, err)

	assert.Equal(t, "Python", res.Prediction.PredictedCategory)
	require.NotNil(t, res.Suggestion)
	assert.Equal(t, classify.FolderSuggestion{MainFolder: "YouTube", SubFolder: "Python", Confidence: 100}, *res.Suggestion)
	require.Len(t, res.CreatedFolders, 2)
	assert.Equal(t, "Created 2 folder(s): YouTube > Python", res.Message)
	assert.Equal(t, "🎥", res.CreatedFolders[0].Icon)
	assert.Equal(t, "#3776AB", res.CreatedFolders[1].Color)
	assert.Equal(t, "YouTube › Python", res.Link.FolderPath)
	assert.Equal(t, "youtube", res.Link.Source)
	assert.Equal(t, []string{"python"}, res.Link.Tags)

	res2, err := o.AddLink(ctx, AddRequest{UserID: "alice", URL: "https://youtu.be/2"})
	require.NoError(t, err)
	assert.Empty(t, res2.CreatedFolders)
	assert.Equal(t, "Added to existing folder", res2.Message)
	assert.Equal(t, res.Link.FolderID, res2.Link.FolderID)

	folders, err := store.ListFolders("alice")
	require.NoError(t, err)
	assert.Len(t, folders, 2)

	calls := fx.calls
	_, err = o.AddLink(ctx, AddRequest{UserID: "alice", URL: "https://youtu.be/2"})
	assert.ErrorIs(t, err, db.ErrLinkExists)
	assert.Equal(t, calls, fx.calls, "duplicates are rejected before fetching")
}

func TestAddLink_ConcurrentSubmissionsShareFolders(t *testing.T) {
	const n = 12
	pages := make(map[string]extract.Metadata, n)
	for i := 0; i < n; i++ {
		pages[fmt.Sprintf("https://www.youtube.com/watch?v=%d", i)] = extract.Metadata{Title: pythonTitle}
	}
	o, store, _ := newTestOrganizer(t, pages, Options{})

	var wg sync.WaitGroup
	results := make([]*AddResult, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = o.AddLink(context.Background(), AddRequest{
				UserID: "alice",
				URL:    fmt.Sprintf("https://www.youtube.com/watch?v=%d", i),
			})
		}(i)
	}
	wg.Wait()

	created := 0
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "YouTube › Python", results[i].Link.FolderPath)
		assert.Equal(t, results[0].Link.FolderID, results[i].Link.FolderID)
		created += len(results[i].CreatedFolders)
	}
	assert.Equal(t, 2, created)

	folders, err := store.ListFolders("alice")
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, "YouTube", folders[0].Name)
	assert.Equal(t, "Python", folders[1].Name)
	assert.Equal(t, folders[0].ID, folders[1].ParentID)

	count, err := store.CountLinks("alice")
	require.NoError(t, err)
	assert.Equal(t, n, count)
}

func TestAddLink_UnknownSourceFromExtractor(t *testing.T) {
	o, _, _ := newTestOrganizer(t, map[string]extract.Metadata{
		"https://github.com/golang/go": {Title: "The Go programming language", Source: "sourceforge"},
	}, Options{})

	res, err := o.AddLink(context.Background(), AddRequest{UserID: "alice", URL: "https://github.com/golang/go"})
	require.NoError(t, err)
	assert.Equal(t, "github", res.Link.Source)
}

func TestAddLink_ExplicitFolder(t *testing.T) {
	o, store, _ := newTestOrganizer(t, map[string]extract.Metadata{
		"https://go.dev/doc": {Title: "Documentation"},
	}, Options{})
	ctx := context.Background()

	folder := &db.Folder{UserID: "alice", Name: "Reading"}
	require.NoError(t, store.CreateFolder(folder))

	res, err := o.AddLink(ctx, AddRequest{UserID: "alice", URL: "https://go.dev/doc", FolderID: folder.ID, Tags: []string{"go"}})
	require.NoError(t, err)
	assert.Nil(t, res.Suggestion)
	assert.Empty(t, res.CreatedFolders)
	assert.Equal(t, folder.ID, res.Link.FolderID)
	assert.Equal(t, []string{"go"}, res.Link.Tags)

	_, err = o.AddLink(ctx, AddRequest{UserID: "bob", URL: "https://go.dev/doc", FolderID: folder.ID})
	assert.ErrorIs(t, err, db.ErrFolderNotFound)

	_, err = o.AddLink(ctx, AddRequest{UserID: "alice", URL: "  "})
	assert.ErrorIs(t, err, ErrURLRequired)
}

func TestAddLink_ExtractionFailure(t *testing.T) {
	o, _, _ := newTestOrganizer(t, nil, Options{})

	res, err := o.AddLink(context.Background(), AddRequest{UserID: "alice", URL: "https://www.rust-lang.org/learn"})
	require.NoError(t, err)
	assert.Equal(t, "https://www.rust-lang.org/learn", res.Link.Title)
	assert.Equal(t, "other", res.Link.Source)
	assert.Equal(t, "Rust-lang", res.Suggestion.MainFolder)
	assert.Contains(t, res.Link.FolderPath, "Rust-lang › ")
}

func TestAddLink_AutoEnrich(t *testing.T) {
	enricher := &fakeEnricher{summary: &Summary{Description: "How pandas groups data", Tags: []string{"Pandas", "dataframes"}}}
	o, _, _ := newTestOrganizer(t, map[string]extract.Metadata{
		"https://example.com/a": {Title: pythonTitle, Text: "long article"},
		"https://example.com/b": {Title: pythonTitle, Description: "already described"},
	}, Options{Enricher: enricher, AutoEnrich: true})
	ctx := context.Background()

	res, err := o.AddLink(ctx, AddRequest{UserID: "alice", URL: "https://example.com/a"})
	require.NoError(t, err)
	assert.Equal(t, "How pandas groups data", res.Link.Description)
	assert.ElementsMatch(t, []string{"pandas", "dataframes"}, res.Link.Tags)

	res, err = o.AddLink(ctx, AddRequest{UserID: "alice", URL: "https://example.com/b"})
	require.NoError(t, err)
	assert.Equal(t, "already described", res.Link.Description)
	assert.Equal(t, 1, enricher.calls)
}

func TestAnalyze(t *testing.T) {
	o, store, _ := newTestOrganizer(t, nil, Options{})
	ctx := context.Background()

	for _, name := range []string{"Python", "Python Notes", "Java"} {
		require.NoError(t, store.CreateFolder(&db.Folder{UserID: "alice", Name: name}))
	}

	res, err := o.Analyze(ctx, "alice", classify.Input{Title: pythonTitle})
	require.NoError(t, err)
	assert.Equal(t, "Python", res.Prediction.PredictedCategory)
	require.Len(t, res.MatchingFolders, 2)
	assert.Equal(t, "Python", res.MatchingFolders[0].Name)
	assert.Equal(t, "Python Notes", res.MatchingFolders[1].Name)
	assert.Equal(t, "Found 2 matching folder(s)", res.Message)

	res, err = o.Analyze(ctx, "bob", classify.Input{Title: pythonTitle})
	require.NoError(t, err)
	assert.Empty(t, res.MatchingFolders)
	assert.Equal(t, "No matching folders found. New folder will be created.", res.Message)
}

func TestCategories(t *testing.T) {
	o, _, _ := newTestOrganizer(t, nil, Options{})

	cats := o.Categories()
	assert.Len(t, cats, 21)
	assert.Equal(t, "Operating Systems", cats[0])
}

func TestSuggest(t *testing.T) {
	o, _, fx := newTestOrganizer(t, map[string]extract.Metadata{
		"https://www.youtube.com/watch?v=9": {Title: pythonTitle},
	}, Options{})
	ctx := context.Background()

	got := o.Suggest(ctx, "https://www.youtube.com/watch?v=9", "", "")
	assert.Equal(t, "Python", got.SubFolder)
	assert.Equal(t, 1, fx.calls)

	got = o.Suggest(ctx, "https://github.com/x/y", pythonTitle, "")
	assert.Equal(t, classify.FolderSuggestion{MainFolder: "GitHub", SubFolder: "Python", Confidence: 100}, got)
	assert.Equal(t, 1, fx.calls, "given a title the page is not fetched")
}

func TestRefresh(t *testing.T) {
	pages := map[string]extract.Metadata{
		"https://example.com/post": {Title: "Old title", Tags: []string{"old"}},
	}
	o, store, fx := newTestOrganizer(t, pages, Options{})
	ctx := context.Background()

	folder := &db.Folder{UserID: "alice", Name: "Reading"}
	require.NoError(t, store.CreateFolder(folder))
	res, err := o.AddLink(ctx, AddRequest{UserID: "alice", URL: "https://example.com/post", FolderID: folder.ID})
	require.NoError(t, err)

	fx.pages["https://example.com/post"] = extract.Metadata{
		Title:       "New title",
		Description: "Now with a description",
		Thumbnail:   "https://example.com/t.png",
		Tags:        []string{"new"},
	}

	link, err := o.Refresh(ctx, "alice", "https://example.com/post")
	require.NoError(t, err)
	assert.Equal(t, res.Link.ID, link.ID)
	assert.Equal(t, "New title", link.Title)
	assert.Equal(t, "Now with a description", link.Description)
	assert.Equal(t, folder.ID, link.FolderID)

	got, err := store.GetLink("alice", link.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "old"}, got.Tags)

	_, err = o.Refresh(ctx, "alice", res.Link.ID)
	assert.NoError(t, err)

	_, err = o.Refresh(ctx, "alice", "https://missing.example")
	assert.ErrorIs(t, err, db.ErrLinkNotFound)

	delete(fx.pages, "https://example.com/post")
	_, err = o.Refresh(ctx, "alice", link.ID)
	assert.Error(t, err)
	got, _ = store.GetLink("alice", link.ID)
	assert.Equal(t, "New title", got.Title, "a failed refresh leaves the link untouched")
}

func TestEnrich(t *testing.T) {
	ctx := context.Background()

	o, _, _ := newTestOrganizer(t, nil, Options{})
	_, err := o.Enrich(ctx, "alice", 0, nil)
	assert.ErrorIs(t, err, ErrEnrichDisabled)

	enricher := &fakeEnricher{summary: &Summary{Description: "Summarised", Tags: []string{"ai"}}}
	pages := map[string]extract.Metadata{
		"https://example.com/1": {Title: "One", Text: "body"},
		"https://example.com/2": {Title: "Two"},
		"https://example.com/3": {Title: "Three", Description: "has one"},
	}
	o, store, _ := newTestOrganizer(t, pages, Options{Enricher: enricher})

	folder := &db.Folder{UserID: "alice", Name: "Misc"}
	require.NoError(t, store.CreateFolder(folder))
	for _, u := range []string{"https://example.com/1", "https://example.com/2", "https://example.com/3"} {
		_, err := o.AddLink(ctx, AddRequest{UserID: "alice", URL: u, FolderID: folder.ID})
		require.NoError(t, err)
	}
	assert.Equal(t, 0, enricher.calls, "auto enrichment is off")

	var steps []int
	report, err := o.Enrich(ctx, "alice", 0, func(done, total int) {
		assert.Equal(t, 2, total)
		steps = append(steps, done)
	})
	require.NoError(t, err)
	assert.Equal(t, &EnrichReport{Processed: 2, Updated: 2}, report)
	assert.Equal(t, []int{1, 2}, steps)

	link, err := store.GetLinkByURL("alice", "https://example.com/2")
	require.NoError(t, err)
	assert.Equal(t, "Summarised", link.Description)
	assert.Equal(t, []string{"ai"}, link.Tags)
	assert.Equal(t, folder.ID, link.FolderID)

	enricher.err = errors.New("rate limited")
	store.CreateLink(&db.Link{UserID: "alice", URL: "https://example.com/4", FolderID: folder.ID})
	report, err = o.Enrich(ctx, "alice", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, &EnrichReport{Processed: 1, Failed: 1}, report)
}
