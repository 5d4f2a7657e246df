package web

import (
	"log"
	"net/http"
)

func (s *Server) handleCollectors(w http.ResponseWriter, r *http.Request) {
	collectors, err := s.ownership.ListCollectors(r.Context())
	if err != nil {
		http.Error(w, "failed to list collectors", http.StatusInternalServerError)
		log.Printf("list collectors error: %v", err)
		return
	}

	if err := s.renderPage(w,
		map[string]any{"Collectors": collectors, "Account": currentAccount(r)},
		"base.html", "pages/collectors.html",
	); err != nil {
		log.Printf("render page error: %v", err)
	}
}

func (s *Server) handleCollectorDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	acct, err := s.accounts.GetAccount(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to get collector", http.StatusInternalServerError)
		log.Printf("get collector error: %v", err)
		return
	}
	if acct == nil {
		http.NotFound(w, r)
		return
	}

	owned, err := s.ownership.CollectorLids(r.Context(), acct.ID)
	if err != nil {
		http.Error(w, "failed to list owned lids", http.StatusInternalServerError)
		log.Printf("collector lids error: %v", err)
		return
	}

	if err := s.renderPage(w,
		map[string]any{"Collector": acct, "Owned": owned, "Account": currentAccount(r)},
		"base.html", "pages/collector_detail.html",
	); err != nil {
		log.Printf("render page error: %v", err)
	}
}
