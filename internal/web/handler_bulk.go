package web

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/ymori/futalog/internal/domain"
	"github.com/ymori/futalog/internal/geo"
)

func (s *Server) handleBulkSelect(w http.ResponseWriter, r *http.Request) {
	acct := currentAccount(r)
	if acct == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	summaries, err := s.ownership.ListSummaries(r.Context(), acct.ID)
	if err != nil {
		http.Error(w, "failed to load catalog", http.StatusInternalServerError)
		log.Printf("list summaries error: %v", err)
		return
	}

	if err := s.renderPage(w,
		map[string]any{
			"Sections": geo.BuildRegionSections(summaries),
			"Account":  acct,
		},
		"base.html", "pages/bulk.html",
	); err != nil {
		log.Printf("render page error: %v", err)
	}
}

// handleBulkStage parses the selection form into a draft. Form fields are
// named count_<lidID>; blank fields are skipped. The whole form must parse
// before anything is staged.
func (s *Server) handleBulkStage(w http.ResponseWriter, r *http.Request) {
	acct := currentAccount(r)
	if acct == nil {
		http.Error(w, domain.ErrUnauthorized.Error(), http.StatusUnauthorized)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	var selections []domain.Selection
	for key, values := range r.PostForm {
		if !strings.HasPrefix(key, "count_") || len(values) == 0 || strings.TrimSpace(values[0]) == "" {
			continue
		}
		lidID, err := strconv.ParseInt(strings.TrimPrefix(key, "count_"), 10, 64)
		if err != nil {
			http.Error(w, "invalid lid id", http.StatusBadRequest)
			return
		}
		count, err := strconv.ParseInt(strings.TrimSpace(values[0]), 10, 64)
		if err != nil {
			http.Error(w, "invalid count", http.StatusBadRequest)
			return
		}
		selections = append(selections, domain.Selection{LidID: lidID, Count: count})
	}

	if err := s.ownership.StageDraft(r.Context(), acct.ID, selections); err != nil {
		writeServiceError(w, err)
		log.Printf("stage draft error: %v", err)
		return
	}

	http.Redirect(w, r, "/bulk/confirm", http.StatusSeeOther)
}

func (s *Server) handleBulkConfirm(w http.ResponseWriter, r *http.Request) {
	acct := currentAccount(r)
	if acct == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	rows, err := s.stagedRows(r, acct.ID)
	if err != nil {
		http.Error(w, "failed to load draft", http.StatusInternalServerError)
		log.Printf("load draft error: %v", err)
		return
	}

	if err := s.renderPage(w,
		map[string]any{
			"Sections": geo.GroupSelections(rows),
			"Total":    len(rows),
			"Account":  acct,
		},
		"base.html", "pages/bulk_confirm.html",
	); err != nil {
		log.Printf("render page error: %v", err)
	}
}

func (s *Server) handleBulkCommit(w http.ResponseWriter, r *http.Request) {
	acct := currentAccount(r)
	if acct == nil {
		http.Error(w, domain.ErrUnauthorized.Error(), http.StatusUnauthorized)
		return
	}

	selections, err := s.ownership.LoadDraft(r.Context(), acct.ID)
	if err != nil {
		writeServiceError(w, err)
		log.Printf("load draft error: %v", err)
		return
	}

	if _, err := s.ownership.ApplyBatch(r.Context(), acct.ID, selections); err != nil {
		writeServiceError(w, err)
		log.Printf("apply batch error: %v", err)
		return
	}

	if err := s.ownership.ClearDraft(r.Context(), acct.ID); err != nil {
		log.Printf("clear draft error: %v", err)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// stagedRows joins the staged draft to its lids for the confirmation page,
// carrying the staged count in SelfOwnedCount.
func (s *Server) stagedRows(r *http.Request, accountID string) ([]domain.LidSummary, error) {
	selections, err := s.ownership.LoadDraft(r.Context(), accountID)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.LidSummary, 0, len(selections))
	for _, sel := range selections {
		detail, err := s.ownership.GetLidDetail(r.Context(), sel.LidID, "")
		if err != nil {
			continue
		}
		rows = append(rows, domain.LidSummary{Lid: *detail.Lid, SelfOwnedCount: sel.Count})
	}
	return rows, nil
}
