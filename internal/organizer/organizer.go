// Package organizer runs the save-a-link workflow: extract metadata,
// classify, file the link into a source/topic folder pair, and keep saved
// links fresh afterwards.
package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/user/linkfind/internal/classify"
	"github.com/user/linkfind/internal/db"
	"github.com/user/linkfind/internal/extract"
)

var (
	ErrURLRequired    = errors.New("url is required")
	ErrEnrichDisabled = errors.New("enrichment is not configured")
	errEmptySummary   = errors.New("empty summary")
)

var tracer = otel.Tracer("github.com/user/linkfind/internal/organizer")

// MetadataExtractor fetches page metadata for a URL.
type MetadataExtractor interface {
	Extract(ctx context.Context, rawURL string) (*extract.Metadata, error)
}

// Enricher writes a description and tags for a page.
type Enricher interface {
	Summarize(ctx context.Context, title, content string) (*Summary, error)
}

type Options struct {
	// Enricher is optional; without it Enrich returns ErrEnrichDisabled.
	Enricher Enricher
	// AutoEnrich summarises new links that arrive without a description.
	AutoEnrich bool
	Logger     *slog.Logger
}

type Organizer struct {
	store      *db.Store
	classifier *classify.Classifier
	extractor  MetadataExtractor
	enricher   Enricher
	autoEnrich bool
	logger     *slog.Logger
}

func New(store *db.Store, classifier *classify.Classifier, extractor MetadataExtractor, opts Options) *Organizer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Organizer{
		store:      store,
		classifier: classifier,
		extractor:  extractor,
		enricher:   opts.Enricher,
		autoEnrich: opts.AutoEnrich && opts.Enricher != nil,
		logger:     logger,
	}
}

func (o *Organizer) Classifier() *classify.Classifier {
	return o.classifier
}

// AddRequest describes a link to save. Without FolderID the link is filed
// automatically. Title and Description override what the page declares.
type AddRequest struct {
	UserID      string   `json:"-"`
	URL         string   `json:"url"`
	FolderID    string   `json:"folder_id,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type AddResult struct {
	Link           *db.Link                   `json:"link"`
	Prediction     classify.Result            `json:"prediction"`
	Suggestion     *classify.FolderSuggestion `json:"suggestion,omitempty"`
	CreatedFolders []db.Folder                `json:"created_folders"`
	Message        string                     `json:"message"`
}

// AddLink extracts, classifies and saves a link. Extraction failures are
// logged and the link is saved with the URL as its title.
func (o *Organizer) AddLink(ctx context.Context, req AddRequest) (res *AddResult, err error) {
	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		return nil, ErrURLRequired
	}

	ctx, span := tracer.Start(ctx, "organizer.AddLink")
	span.SetAttributes(attribute.String("link.url", rawURL))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(
				attribute.String("link.category", res.Prediction.PredictedCategory),
				attribute.Int("link.created_folders", len(res.CreatedFolders)),
			)
		}
		span.End()
	}()

	if _, err := o.store.GetLinkByURL(req.UserID, rawURL); err == nil {
		return nil, db.ErrLinkExists
	} else if !errors.Is(err, db.ErrLinkNotFound) {
		return nil, err
	}

	md := o.extract(ctx, rawURL)
	if req.Title != "" {
		md.Title = req.Title
	}
	if req.Description != "" {
		md.Description = req.Description
	}
	tags := append(append([]string{}, md.Tags...), req.Tags...)

	if o.autoEnrich && md.Description == "" {
		if sum, err := o.summarize(ctx, md.Title, md.Text); err != nil {
			o.logger.Warn("enrichment failed", "url", rawURL, "error", err)
		} else {
			md.Description = sum.Description
			tags = append(tags, sum.Tags...)
		}
	}

	result := &AddResult{
		Prediction: o.classifier.PredictCategory(classify.Input{
			Title:       md.Title,
			Description: md.Description,
			Tags:        tags,
		}),
		CreatedFolders: []db.Folder{},
	}

	folderID := req.FolderID
	if folderID == "" {
		suggestion := o.classifier.SuggestHierarchicalFolder(rawURL, md.Title, md.Description)
		result.Suggestion = &suggestion

		main, created, err := o.store.FindOrCreateFolder(req.UserID, suggestion.MainFolder, "", sourceStyle(suggestion.MainFolder))
		if err != nil {
			return nil, fmt.Errorf("main folder: %w", err)
		}
		if created {
			result.CreatedFolders = append(result.CreatedFolders, *main)
		}

		sub, created, err := o.store.FindOrCreateFolder(req.UserID, suggestion.SubFolder, main.ID, categoryStyle(suggestion.SubFolder))
		if err != nil {
			return nil, fmt.Errorf("sub-folder: %w", err)
		}
		if created {
			result.CreatedFolders = append(result.CreatedFolders, *sub)
		}
		folderID = sub.ID
	}

	link := &db.Link{
		UserID:      req.UserID,
		URL:         rawURL,
		Title:       md.Title,
		Description: md.Description,
		Thumbnail:   md.Thumbnail,
		Tags:        tags,
		FolderID:    folderID,
		Source:      string(md.Source),
		Author:      md.Author,
	}
	if err := o.store.CreateLink(link); err != nil {
		return nil, err
	}
	result.Link = link
	result.Message = addMessage(result.CreatedFolders)

	o.logger.Info("link saved",
		"user", req.UserID,
		"url", rawURL,
		"folder", link.FolderPath,
		"category", result.Prediction.PredictedCategory,
		"created_folders", len(result.CreatedFolders),
	)
	return result, nil
}

func addMessage(created []db.Folder) string {
	if len(created) == 0 {
		return "Added to existing folder"
	}
	names := make([]string, len(created))
	for i, f := range created {
		names[i] = f.Name
	}
	return fmt.Sprintf("Created %d folder(s): %s", len(created), strings.Join(names, " > "))
}

// extract never fails: on error the metadata carries the URL as title.
func (o *Organizer) extract(ctx context.Context, rawURL string) *extract.Metadata {
	md, err := o.extractor.Extract(ctx, rawURL)
	if err != nil {
		o.logger.Warn("metadata extraction failed", "url", rawURL, "error", err)
	}
	if md == nil {
		md = &extract.Metadata{Tags: []string{}}
	}
	if !md.Source.Valid() {
		md.Source = extract.SourceFor(rawURL)
	}
	if md.Title == "" {
		md.Title = rawURL
	}
	return md
}

func (o *Organizer) summarize(ctx context.Context, title, content string) (*Summary, error) {
	if content == "" {
		content = title
	}
	sum, err := o.enricher.Summarize(ctx, title, content)
	if err != nil {
		return nil, err
	}
	if sum == nil || sum.Description == "" {
		return nil, errEmptySummary
	}
	return sum, nil
}

type AnalyzeResult struct {
	Prediction      classify.Result `json:"prediction"`
	MatchingFolders []db.Folder     `json:"matching_folders"`
	Message         string          `json:"message"`
}

// Analyze classifies in and lists the user's folders that already fit the
// predicted category. Nothing is written.
func (o *Organizer) Analyze(ctx context.Context, userID string, in classify.Input) (*AnalyzeResult, error) {
	prediction := o.classifier.PredictCategory(in)

	folders, err := o.store.ListFolders(userID)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(folders))
	byName := make(map[string][]db.Folder, len(folders))
	for i, f := range folders {
		names[i] = f.Name
		byName[f.Name] = append(byName[f.Name], f)
	}

	result := &AnalyzeResult{Prediction: prediction, MatchingFolders: []db.Folder{}}
	seen := make(map[string]bool)
	for _, name := range classify.MatchFolders(names, prediction) {
		if seen[name] {
			continue
		}
		seen[name] = true
		result.MatchingFolders = append(result.MatchingFolders, byName[name]...)
	}

	if n := len(result.MatchingFolders); n > 0 {
		result.Message = fmt.Sprintf("Found %d matching folder(s)", n)
	} else {
		result.Message = "No matching folders found. New folder will be created."
	}
	return result, nil
}

// Categories lists the category names in table order.
func (o *Organizer) Categories() []string {
	return o.classifier.Tables().CategoryNames()
}

// Suggest returns where AddLink would file the URL, without saving anything.
func (o *Organizer) Suggest(ctx context.Context, rawURL, title, description string) classify.FolderSuggestion {
	rawURL = strings.TrimSpace(rawURL)
	if title == "" && description == "" && rawURL != "" {
		md := o.extract(ctx, rawURL)
		title, description = md.Title, md.Description
	}
	return o.classifier.SuggestHierarchicalFolder(rawURL, title, description)
}

// Refresh re-extracts a saved link's metadata. The link stays in its folder.
func (o *Organizer) Refresh(ctx context.Context, userID, idOrURL string) (*db.Link, error) {
	link, err := o.store.GetLink(userID, idOrURL)
	if errors.Is(err, db.ErrLinkNotFound) {
		link, err = o.store.GetLinkByURL(userID, idOrURL)
	}
	if err != nil {
		return nil, err
	}

	md, err := o.extractor.Extract(ctx, link.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh %s: %w", link.URL, err)
	}

	if md.Title != "" {
		link.Title = md.Title
	}
	if md.Description != "" {
		link.Description = md.Description
	}
	if md.Thumbnail != "" {
		link.Thumbnail = md.Thumbnail
	}
	if md.Author != "" {
		link.Author = md.Author
	}
	link.Source = string(md.Source)
	link.Tags = append(link.Tags, md.Tags...)

	if err := o.store.UpdateLink(link); err != nil {
		return nil, err
	}
	return link, nil
}

type EnrichReport struct {
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
	Failed    int `json:"failed"`
}

// Enrich fills in descriptions and tags for links saved without a
// description, up to limit links (0 for all). progress may be nil.
func (o *Organizer) Enrich(ctx context.Context, userID string, limit int, progress func(done, total int)) (*EnrichReport, error) {
	if o.enricher == nil {
		return nil, ErrEnrichDisabled
	}

	links, err := o.store.LinksWithoutDescription(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	report := &EnrichReport{}
	for i := range links {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		link := &links[i]
		report.Processed++

		content := link.Title
		if md, err := o.extractor.Extract(ctx, link.URL); err != nil {
			o.logger.Debug("extraction failed, summarising title only", "url", link.URL, "error", err)
		} else if md.Text != "" {
			content = md.Text
		}

		sum, err := o.summarize(ctx, link.Title, content)
		if err != nil {
			o.logger.Warn("enrichment failed", "url", link.URL, "error", err)
			report.Failed++
		} else {
			link.Description = sum.Description
			link.Tags = append(link.Tags, sum.Tags...)
			if err := o.store.UpdateLink(link); err != nil {
				o.logger.Warn("failed to save enriched link", "url", link.URL, "error", err)
				report.Failed++
			} else {
				report.Updated++
			}
		}

		if progress != nil {
			progress(i+1, len(links))
		}
	}
	return report, nil
}
