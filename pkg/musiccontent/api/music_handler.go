package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/trackplanner/music-content/pkg/musiccontent"
)

// maxUploadBytes bounds the in-memory portion of multipart parsing.
const maxUploadBytes = 32 << 20

// MusicHandler handles HTTP requests for music assets
type MusicHandler struct {
	service musiccontent.Service
}

// NewMusicHandler creates a new music handler
func NewMusicHandler(service musiccontent.Service) *MusicHandler {
	return &MusicHandler{service: service}
}

// Routes returns the routes for music assets
func (h *MusicHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateMusic)
	r.Get("/", h.SearchMusic)
	r.Get("/{uid}", h.GetMusic)
	r.Put("/{uid}", h.UpdateMusic)
	r.Delete("/{uid}", h.DeleteMusic)

	return r
}

// MusicResponse is the response body for a music asset
type MusicResponse struct {
	UID              string    `json:"uid"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Title            string    `json:"title"`
	Subtitle         string    `json:"subtitle,omitempty"`
	Author           string    `json:"author"`
	Version          string    `json:"version,omitempty"`
	PresentationType string    `json:"presentation_type"`
	Genre            string    `json:"genre"`
	BPM              *int      `json:"bpm,omitempty"`
	FileName         string    `json:"file_name"`
	FileURL          string    `json:"file_url,omitempty"`
	SheetMusicName   string    `json:"sheet_music_name,omitempty"`
	SheetMusicURL    string    `json:"sheet_music_url,omitempty"`
}

func toMusicResponse(view *musiccontent.AssetView) MusicResponse {
	return MusicResponse{
		UID:              view.UID.String(),
		CreatedAt:        view.CreatedAt,
		UpdatedAt:        view.UpdatedAt,
		Title:            view.Title,
		Subtitle:         view.Subtitle,
		Author:           view.Author,
		Version:          view.Version,
		PresentationType: string(view.PresentationType),
		Genre:            string(view.Genre),
		BPM:              view.BPM,
		FileName:         view.FileName,
		FileURL:          view.FileURL,
		SheetMusicName:   view.SheetMusicName,
		SheetMusicURL:    view.SheetMusicURL,
	}
}

// CreateMusic accepts a multipart form with the audio under "file", optional
// sheet music under "sheetMusic", and the metadata as plain form fields.
func (h *MusicHandler) CreateMusic(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	title := r.FormValue("title")
	author := r.FormValue("author")
	if title == "" || author == "" {
		http.Error(w, "title and author are required", http.StatusBadRequest)
		return
	}

	presentationType := musiccontent.PresentationType(r.FormValue("presentation_type"))
	if !presentationType.IsValid() {
		http.Error(w, "invalid presentation type", http.StatusBadRequest)
		return
	}
	genre := musiccontent.Genre(r.FormValue("genre"))
	if !genre.IsValid() {
		http.Error(w, "invalid genre", http.StatusBadRequest)
		return
	}

	var bpm *int
	if raw := r.FormValue("bpm"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid bpm", http.StatusBadRequest)
			return
		}
		bpm = &parsed
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "audio file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	req := musiccontent.CreateAssetRequest{
		Title:            title,
		Subtitle:         r.FormValue("subtitle"),
		Author:           author,
		Version:          r.FormValue("version"),
		PresentationType: presentationType,
		Genre:            genre,
		BPM:              bpm,
		File: musiccontent.FileUpload{
			Reader:      file,
			FileName:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
		},
	}

	if sheet, sheetHeader, err := r.FormFile("sheetMusic"); err == nil {
		defer sheet.Close()
		req.SheetMusic = &musiccontent.FileUpload{
			Reader:      sheet,
			FileName:    sheetHeader.Filename,
			ContentType: sheetHeader.Header.Get("Content-Type"),
		}
	}

	view, err := h.service.CreateAsset(r.Context(), req)
	if err != nil {
		slog.Error("Failed to create music asset", "error", err)
		h.writeServiceError(w, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toMusicResponse(view))
}

// GetMusic returns one asset with freshly signed URLs
func (h *MusicHandler) GetMusic(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(chi.URLParam(r, "uid"))
	if err != nil {
		http.Error(w, "invalid uid", http.StatusBadRequest)
		return
	}

	view, err := h.service.GetAsset(r.Context(), uid)
	if err != nil {
		slog.Error("Failed to get music asset", "uid", uid, "error", err)
		h.writeServiceError(w, err)
		return
	}

	render.JSON(w, r, toMusicResponse(view))
}

// SearchMusic lists assets matching the query parameters, most recently
// modified first
func (h *MusicHandler) SearchMusic(w http.ResponseWriter, r *http.Request) {
	filters := musiccontent.SearchFilters{
		Title:  r.URL.Query().Get("title"),
		Author: r.URL.Query().Get("author"),
	}
	if raw := r.URL.Query().Get("genre"); raw != "" {
		genre := musiccontent.Genre(raw)
		if !genre.IsValid() {
			http.Error(w, "invalid genre", http.StatusBadRequest)
			return
		}
		filters.Genre = genre
	}
	if raw := r.URL.Query().Get("presentation_type"); raw != "" {
		presentationType := musiccontent.PresentationType(raw)
		if !presentationType.IsValid() {
			http.Error(w, "invalid presentation type", http.StatusBadRequest)
			return
		}
		filters.PresentationType = presentationType
	}

	views, err := h.service.SearchAssets(r.Context(), filters)
	if err != nil {
		slog.Error("Failed to search music assets", "error", err)
		h.writeServiceError(w, err)
		return
	}

	responses := make([]MusicResponse, 0, len(views))
	for _, view := range views {
		responses = append(responses, toMusicResponse(view))
	}
	render.JSON(w, r, responses)
}

// UpdateMusicRequest is the request body for a partial metadata update.
// Absent fields are left unchanged; file references cannot be changed here.
type UpdateMusicRequest struct {
	Title            *string `json:"title"`
	Subtitle         *string `json:"subtitle"`
	Author           *string `json:"author"`
	Version          *string `json:"version"`
	PresentationType *string `json:"presentation_type"`
	Genre            *string `json:"genre"`
	BPM              *int    `json:"bpm"`
}

// UpdateMusic merges the supplied fields into an existing asset
func (h *MusicHandler) UpdateMusic(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(chi.URLParam(r, "uid"))
	if err != nil {
		http.Error(w, "invalid uid", http.StatusBadRequest)
		return
	}

	var req UpdateMusicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fields := musiccontent.UpdateAssetFields{
		Title:    req.Title,
		Subtitle: req.Subtitle,
		Author:   req.Author,
		Version:  req.Version,
		BPM:      req.BPM,
	}
	if req.PresentationType != nil {
		presentationType := musiccontent.PresentationType(*req.PresentationType)
		if !presentationType.IsValid() {
			http.Error(w, "invalid presentation type", http.StatusBadRequest)
			return
		}
		fields.PresentationType = &presentationType
	}
	if req.Genre != nil {
		genre := musiccontent.Genre(*req.Genre)
		if !genre.IsValid() {
			http.Error(w, "invalid genre", http.StatusBadRequest)
			return
		}
		fields.Genre = &genre
	}

	view, err := h.service.UpdateAsset(r.Context(), uid, fields)
	if err != nil {
		slog.Error("Failed to update music asset", "uid", uid, "error", err)
		h.writeServiceError(w, err)
		return
	}

	render.JSON(w, r, toMusicResponse(view))
}

// DeleteMusic removes the asset and its stored objects
func (h *MusicHandler) DeleteMusic(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(chi.URLParam(r, "uid"))
	if err != nil {
		http.Error(w, "invalid uid", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteAsset(r.Context(), uid); err != nil {
		slog.Error("Failed to delete music asset", "uid", uid, "error", err)
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps service errors to responses without leaking store
// internals to clients.
func (h *MusicHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, musiccontent.ErrAssetNotFound):
		http.Error(w, "music not found", http.StatusNotFound)
	case errors.Is(err, musiccontent.ErrStoreUnavailable):
		http.Error(w, "service temporarily unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
