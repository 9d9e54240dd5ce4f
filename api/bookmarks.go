/*
bookmarks.go - Bookmarks catalog HTTP handlers

ENDPOINTS:
  GET/POST       /api/bookmarks
  GET/PUT/DELETE /api/bookmarks/{id}
  GET            /api/bookmarks/category/{category}
  GET            /api/categories
  GET            /api/export        Full catalog as a JSON download
*/
package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/deskhub/team-portal/store/sqlite"
)

// ListBookmarks returns the whole catalog.
func (h *Handler) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	h.writeBookmarkList(w, r, "")
}

// ListBookmarksByCategory returns one category's bookmarks.
func (h *Handler) ListBookmarksByCategory(w http.ResponseWriter, r *http.Request) {
	h.writeBookmarkList(w, r, chi.URLParam(r, "category"))
}

func (h *Handler) writeBookmarkList(w http.ResponseWriter, r *http.Request, category string) {
	bookmarks, err := h.Store.ListBookmarks(r.Context(), category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bookmarks", err)
		return
	}

	dtos := make([]BookmarkDTO, len(bookmarks))
	for i, b := range bookmarks {
		dtos[i] = toBookmarkDTO(b)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListCategories returns the distinct categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Store.ListCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list categories", err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, categories)
}

// GetBookmark returns a single bookmark.
func (h *Handler) GetBookmark(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b, err := h.Store.FindBookmark(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get bookmark", err)
		return
	}
	if b == nil {
		writeError(w, http.StatusNotFound, "Bookmark not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toBookmarkDTO(*b))
}

// CreateBookmark adds a bookmark to the catalog.
func (h *Handler) CreateBookmark(w http.ResponseWriter, r *http.Request) {
	var req BookmarkRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	b, err := h.Store.InsertBookmark(r.Context(), bookmarkFromRequest(req))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create bookmark", err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookmarkDTO(*b))
}

// UpdateBookmark replaces a bookmark's fields.
func (h *Handler) UpdateBookmark(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req BookmarkRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	b := bookmarkFromRequest(req)
	b.ID = id
	if err := h.Store.UpdateBookmark(r.Context(), b); err != nil {
		if errors.Is(err, sqlite.ErrBookmarkNotFound) {
			writeError(w, http.StatusNotFound, "Bookmark not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update bookmark", err)
		return
	}
	writeJSON(w, http.StatusOK, toBookmarkDTO(b))
}

// DeleteBookmark removes a bookmark.
func (h *Handler) DeleteBookmark(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteBookmark(r.Context(), id); err != nil {
		if errors.Is(err, sqlite.ErrBookmarkNotFound) {
			writeError(w, http.StatusNotFound, "Bookmark not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete bookmark", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportBookmarks streams the full catalog as a JSON attachment.
func (h *Handler) ExportBookmarks(w http.ResponseWriter, r *http.Request) {
	bookmarks, err := h.Store.ListBookmarks(r.Context(), "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export bookmarks", err)
		return
	}

	dtos := make([]BookmarkDTO, len(bookmarks))
	for i, b := range bookmarks {
		dtos[i] = toBookmarkDTO(b)
	}
	w.Header().Set("Content-Disposition", `attachment; filename="bookmarks.json"`)
	writeJSON(w, http.StatusOK, dtos)
}

func bookmarkFromRequest(req BookmarkRequest) sqlite.Bookmark {
	return sqlite.Bookmark{
		Category:         req.Category,
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		Link:             req.Link,
		Icon:             req.Icon,
	}
}
