package web

import (
	"log"
	"net/http"

	"github.com/ymori/futalog/internal/geo"
	"github.com/ymori/futalog/internal/service"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	viewerID := ""
	if acct := currentAccount(r); acct != nil {
		viewerID = acct.ID
	}

	summaries, err := s.ownership.ListSummaries(r.Context(), viewerID)
	if err != nil {
		http.Error(w, "failed to load catalog", http.StatusInternalServerError)
		log.Printf("list summaries error: %v", err)
		return
	}

	recent, err := s.ownership.RecentAcquisitions(r.Context(), service.RecentFeedLimit)
	if err != nil {
		http.Error(w, "failed to load recent feed", http.StatusInternalServerError)
		log.Printf("recent feed error: %v", err)
		return
	}

	if err := s.renderPage(w,
		map[string]any{
			"Sections": geo.BuildRegionSections(summaries),
			"Recent":   recent,
			"Account":  currentAccount(r),
		},
		"base.html", "pages/home.html", "partials/region_section.html", "partials/lid_card.html",
	); err != nil {
		log.Printf("render page error: %v", err)
	}
}
