package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/user/linkfind/internal/classify"
	"github.com/user/linkfind/internal/db"
	"github.com/user/linkfind/internal/organizer"
)

const maxListLimit = 500

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

// GET /api/links?folder_id=&search=&tag=&limit=
func (s *Server) handleListLinks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := db.LinkFilter{
		FolderID: q.Get("folder_id"),
		Search:   strings.TrimSpace(q.Get("search")),
		Tag:      strings.TrimSpace(q.Get("tag")),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		if n > maxListLimit {
			n = maxListLimit
		}
		filter.Limit = n
	}

	links, err := s.store.ListLinks(s.userID(r), filter)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if links == nil {
		links = []db.Link{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"links": links,
		"count": len(links),
	})
}

// POST /api/links
func (s *Server) handleCreateLink(w http.ResponseWriter, r *http.Request) {
	var req organizer.AddRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.UserID = s.userID(r)

	result, err := s.organizer.AddLink(r.Context(), req)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	s.metrics.linksSaved.WithLabelValues(result.Prediction.PredictedCategory).Inc()
	s.metrics.foldersCreated.Add(float64(len(result.CreatedFolders)))
	respondJSON(w, http.StatusCreated, result)
}

type linkUpdate struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
	FolderID    *string   `json:"folder_id"`
	IsFavorite  *bool     `json:"is_favorite"`
}

// PUT /api/links/{id}
func (s *Server) handleUpdateLink(w http.ResponseWriter, r *http.Request) {
	user := s.userID(r)
	id := mux.Vars(r)["id"]

	var req linkUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	link, err := s.store.GetLink(user, id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if req.Title != nil {
		link.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		link.Description = strings.TrimSpace(*req.Description)
	}
	if req.Tags != nil {
		link.Tags = *req.Tags
	}
	if req.FolderID != nil {
		link.FolderID = *req.FolderID
	}
	if req.IsFavorite != nil {
		link.IsFavorite = *req.IsFavorite
	}

	if err := s.store.UpdateLink(link); err != nil {
		respondStoreError(w, err)
		return
	}

	// reload for the folder path
	updated, err := s.store.GetLink(user, id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DELETE /api/links/{id}
func (s *Server) handleDeleteLink(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteLink(s.userID(r), mux.Vars(r)["id"]); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Link deleted successfully"})
}

type folderNode struct {
	db.Folder
	LinkCount  int          `json:"link_count"`
	SubFolders []folderNode `json:"sub_folders,omitempty"`
}

// GET /api/folders returns the tree: main folders with their sub-folders.
func (s *Server) handleListFolders(w http.ResponseWriter, r *http.Request) {
	user := s.userID(r)

	folders, err := s.store.ListFolders(user)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	counts, err := s.store.FolderLinkCounts(user)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	tree := []folderNode{}
	index := make(map[string]int)
	for _, f := range folders {
		if f.ParentID == "" {
			index[f.ID] = len(tree)
			tree = append(tree, folderNode{Folder: f, LinkCount: counts[f.ID]})
		}
	}
	for _, f := range folders {
		if f.ParentID == "" {
			continue
		}
		i, ok := index[f.ParentID]
		if !ok {
			continue
		}
		tree[i].SubFolders = append(tree[i].SubFolders, folderNode{Folder: f, LinkCount: counts[f.ID]})
		tree[i].LinkCount += counts[f.ID]
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"folders": tree,
		"count":   len(folders),
	})
}

type folderRequest struct {
	Name        *string `json:"name"`
	ParentID    string  `json:"parent_id"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
	Description *string `json:"description"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// POST /api/folders
func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if deref(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	f := &db.Folder{
		UserID:      s.userID(r),
		Name:        deref(req.Name),
		ParentID:    strings.TrimSpace(req.ParentID),
		Color:       deref(req.Color),
		Icon:        deref(req.Icon),
		Description: deref(req.Description),
	}
	if err := s.store.CreateFolder(f); err != nil {
		respondStoreError(w, err)
		return
	}

	s.metrics.foldersCreated.Inc()
	respondJSON(w, http.StatusCreated, f)
}

// PUT /api/folders/{id}
func (s *Server) handleUpdateFolder(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	f, err := s.store.GetFolder(s.userID(r), mux.Vars(r)["id"])
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if req.Name != nil {
		if deref(req.Name) == "" {
			respondError(w, http.StatusBadRequest, "name cannot be empty")
			return
		}
		f.Name = deref(req.Name)
	}
	if req.Color != nil {
		f.Color = deref(req.Color)
	}
	if req.Icon != nil {
		f.Icon = deref(req.Icon)
	}
	if req.Description != nil {
		f.Description = deref(req.Description)
	}

	if err := s.store.UpdateFolder(f); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, f)
}

// DELETE /api/folders/{id}
func (s *Server) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteFolder(s.userID(r), mux.Vars(r)["id"]); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Folder deleted successfully"})
}

// POST /api/ml/analyze
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var in classify.Input
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.organizer.Analyze(r.Context(), s.userID(r), in)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type suggestRequest struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// POST /api/ml/suggest
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		respondError(w, http.StatusBadRequest, organizer.ErrURLRequired.Error())
		return
	}

	suggestion := s.organizer.Suggest(r.Context(), req.URL, req.Title, req.Description)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"suggestion": suggestion,
		"path":       suggestion.MainFolder + " › " + suggestion.SubFolder,
	})
}

// GET /api/ml/categories
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories := s.organizer.Categories()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"categories":       categories,
		"total_categories": len(categories),
	})
}
