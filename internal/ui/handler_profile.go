package ui

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/thep200/github-ranking/internal/model"
)

// profileStore là phần của model.Profile mà API cần
type profileStore interface {
	List(ctx context.Context, search string, offset, limit int) ([]model.Profile, int64, error)
	FindByLogin(ctx context.Context, login string) (*model.Profile, error)
}

type Profile struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	Followers   int    `json:"followers"`
	PublicRepos int    `json:"publicRepos"`
	Kind        string `json:"kind"`
	Location    string `json:"location"`
	Company     string `json:"company"`
	HTMLURL     string `json:"htmlUrl"`
	LastRunID   string `json:"lastRunId"`
	SnapshotAt  string `json:"snapshotAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toProfile(p model.Profile) Profile {
	return Profile{
		Login:       p.Login,
		Name:        p.Name,
		Followers:   p.Followers,
		PublicRepos: p.PublicRepos,
		Kind:        p.Kind,
		Location:    p.Location,
		Company:     p.Company,
		HTMLURL:     p.HTMLURL,
		LastRunID:   p.LastRunID,
		SnapshotAt:  p.SnapshotAt,
		UpdatedAt:   p.UpdatedAt.Format("2006-01-02"),
	}
}

// getProfiles liệt kê các profile đã lưu trong MySQL
func (h *Handler) getProfiles(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}
	search := r.URL.Query().Get("search")

	rows, total, err := h.profiles.List(r.Context(), search, (page-1)*pageSize, pageSize)
	if err != nil {
		h.Logger.Error(r.Context(), "Failed to fetch profiles: %v", err)
		http.Error(w, "Failed to fetch profiles", http.StatusInternalServerError)
		return
	}

	profiles := make([]Profile, 0, len(rows))
	for _, row := range rows {
		profiles = append(profiles, toProfile(row))
	}

	writeJSON(w, r, h.Logger, http.StatusOK, map[string]interface{}{
		"profiles": profiles,
		"pagination": map[string]interface{}{
			"page":       page,
			"pageSize":   pageSize,
			"totalCount": total,
			"totalPages": (total + int64(pageSize) - 1) / int64(pageSize),
		},
	})
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	login := chi.URLParam(r, "login")
	row, err := h.profiles.FindByLogin(r.Context(), login)
	if errors.Is(err, model.ErrProfileNotFound) {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Error(r.Context(), "Failed to fetch profile %s: %v", login, err)
		http.Error(w, "Failed to fetch profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, h.Logger, http.StatusOK, toProfile(*row))
}
