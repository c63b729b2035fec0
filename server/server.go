// Package server exposes the feed over HTTP: the feed document itself,
// a health probe and a listing count endpoint.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"cian-feed/feed"
	"cian-feed/models"
	"cian-feed/storage"
)

// Server wires the listing source and the feed engine behind a router.
type Server struct {
	source storage.ListingSource
	vocab  *feed.Vocabulary
	logger zerolog.Logger
}

// New creates a Server over the given source and vocabulary.
func New(source storage.ListingSource, vocab *feed.Vocabulary, logger zerolog.Logger) *Server {
	return &Server{source: source, vocab: vocab, logger: logger}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/feed.xml", s.handleFeed)
	r.Get("/health", s.handleHealth)
	r.Get("/api/count", s.handleCount)

	return r
}

// handleFeed regenerates the document on every request: fetch, filter to
// published, attach agents, assemble, serialize.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rows, err := s.source.FetchListings(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("listing fetch failed")
		http.Error(w, "upstream fetch failed", http.StatusInternalServerError)
		return
	}

	listings := make([]*models.ListingRecord, 0, len(rows))
	for _, row := range rows {
		if row.IsPublished() {
			listings = append(listings, row)
		}
	}

	if err := storage.AttachAgents(ctx, s.source, listings); err != nil {
		s.logger.Error().Err(err).Msg("agent fetch failed")
		http.Error(w, "upstream fetch failed", http.StatusInternalServerError)
		return
	}

	doc := feed.NewBuilder(s.vocab).Build(listings)
	body, err := feed.Serialize(doc)
	if err != nil {
		s.logger.Error().Err(err).Msg("feed serialization failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	s.logger.Info().
		Int("fetched", len(rows)).
		Int("published", len(listings)).
		Stringer("report", feed.Summarize(doc, listings)).
		Msg("feed generated")

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCount reports the store row count and how many of those rows
// are published, i.e. eligible for the feed.
func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	total, err := s.source.CountListings(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("listing count failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "upstream fetch failed"})
		return
	}

	rows, err := s.source.FetchListings(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("listing fetch failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "upstream fetch failed"})
		return
	}
	published := 0
	for _, row := range rows {
		if row.IsPublished() {
			published++
		}
	}

	writeJSON(w, http.StatusOK, map[string]int{"total": total, "published": published})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
