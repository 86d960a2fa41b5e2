package web

import (
	"net/http"
	"strings"

	"github.com/conorfennell/studydeck/internal/domain"
	"github.com/conorfennell/studydeck/internal/generate"
	"github.com/conorfennell/studydeck/internal/validation"
)

// handleListProjects returns every project.
func (s *Server) handleListProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := s.store.ListProjects(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, projects)
	}
}

type projectRequest struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Tag         string `json:"tag" validate:"max=50"`
}

// handleCreateProject validates and stores a new project.
func (s *Server) handleCreateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req projectRequest
		if decode(w, r, &req) != nil {
			return
		}
		req.Title = strings.TrimSpace(req.Title)
		if err := validation.Check(req); err != nil {
			s.writeError(w, r, err)
			return
		}
		p, err := s.store.CreateProject(r.Context(), domain.Project{
			Title:       req.Title,
			Description: req.Description,
			Tag:         req.Tag,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

func (s *Server) handleUpdateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u domain.ProjectUpdate
		if decode(w, r, &u) != nil {
			return
		}
		if err := validation.Check(u); err != nil {
			s.writeError(w, r, err)
			return
		}
		p, err := s.store.UpdateProject(r.Context(), r.PathValue("id"), u)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) handleDeleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.store.DeleteProject(r.Context(), r.PathValue("id")); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleListCards returns the cards of one project.
func (s *Server) handleListCards() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cards, err := s.store.FetchCards(r.Context(), r.PathValue("id"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, cards)
	}
}

type cardRequest struct {
	Front string `json:"front" validate:"required,max=200"`
	Back  string `json:"back" validate:"required,max=500"`
}

func (s *Server) handleCreateCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cardRequest
		if decode(w, r, &req) != nil {
			return
		}
		if err := validation.Check(req); err != nil {
			s.writeError(w, r, err)
			return
		}
		c, err := s.store.CreateCard(r.Context(), domain.NewFlashcard(r.PathValue("id"), req.Front, req.Back))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func (s *Server) handleUpdateCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u domain.CardUpdate
		if decode(w, r, &u) != nil {
			return
		}
		if err := validation.Check(u); err != nil {
			s.writeError(w, r, err)
			return
		}
		c, err := s.store.UpdateCard(r.Context(), r.PathValue("id"), u)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func (s *Server) handleDeleteCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.store.DeleteCard(r.Context(), r.PathValue("id")); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleCreateSession opens a study session for a project.
func (s *Server) handleCreateSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.store.CreateSession(r.Context(), r.PathValue("id"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, sess)
	}
}

type endSessionRequest struct {
	CardsReviewed int `json:"cards_reviewed" validate:"gte=0"`
}

func (s *Server) handleEndSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req endSessionRequest
		if decode(w, r, &req) != nil {
			return
		}
		if err := validation.Check(req); err != nil {
			s.writeError(w, r, err)
			return
		}
		sess, err := s.store.EndSession(r.Context(), r.PathValue("id"), req.CardsReviewed)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

type generateRequest struct {
	Text  string `json:"text" validate:"required"`
	Count int    `json:"count" validate:"required,min=1,max=50"`
}

// handleGenerate turns source text into drafts without storing anything.
func (s *Server) handleGenerate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if decode(w, r, &req) != nil {
			return
		}
		if err := validation.Check(req); err != nil {
			s.writeError(w, r, err)
			return
		}
		drafts, err := s.generator.Generate(r.Context(), req.Text, req.Count)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		drafts = generate.Finalize(drafts, req.Count)
		s.metrics.drafts.Add(float64(len(drafts)))
		writeJSON(w, http.StatusOK, drafts)
	}
}
