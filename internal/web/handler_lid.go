package web

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/ymori/futalog/internal/domain"
)

func (s *Server) handleLidDetail(w http.ResponseWriter, r *http.Request) {
	lidID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid lid id", http.StatusBadRequest)
		return
	}

	viewerID := ""
	if acct := currentAccount(r); acct != nil {
		viewerID = acct.ID
	}

	detail, err := s.ownership.GetLidDetail(r.Context(), lidID, viewerID)
	if errors.Is(err, domain.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "failed to load lid", http.StatusInternalServerError)
		log.Printf("lid detail error: %v", err)
		return
	}

	if err := s.renderPage(w,
		map[string]any{"Detail": detail, "Account": currentAccount(r)},
		"base.html", "pages/lid_detail.html",
	); err != nil {
		log.Printf("render page error: %v", err)
	}
}

func (s *Server) handleSetOwnership(w http.ResponseWriter, r *http.Request) {
	lidID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid lid id", http.StatusBadRequest)
		return
	}

	acct := currentAccount(r)
	if acct == nil {
		http.Error(w, domain.ErrUnauthorized.Error(), http.StatusUnauthorized)
		return
	}

	count, err := strconv.ParseInt(r.FormValue("count"), 10, 64)
	if err != nil {
		http.Error(w, "invalid count", http.StatusBadRequest)
		return
	}

	if _, err := s.ownership.SetOwnership(r.Context(), acct.ID, lidID, count); err != nil {
		writeServiceError(w, err)
		log.Printf("set ownership error: %v", err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/lids/%d", lidID), http.StatusSeeOther)
}

// parseID extracts the {id} path variable and returns it as int64.
func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// writeServiceError maps domain error kinds to HTTP statuses with short
// user-facing messages.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		http.Error(w, domain.ErrInvalidInput.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrUnauthorized):
		http.Error(w, domain.ErrUnauthorized.Error(), http.StatusUnauthorized)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, domain.ErrNotFound.Error(), http.StatusNotFound)
	default:
		http.Error(w, domain.ErrUpdateFailed.Error(), http.StatusInternalServerError)
	}
}
