package server

import (
	"net/http"

	"github.com/jrsteele09/tenant-auth-server/projects"
)

type projectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type projectResponse struct {
	Message string            `json:"message,omitempty"`
	Project *projects.Project `json:"project"`
}

func (s *Server) ListProjectsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := principalFrom(r.Context())
		list, err := s.projects.List(r.Context(), p.Tenant.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]*projects.Project{"projects": list})
	}
}

func (s *Server) CreateProjectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req projectRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		var name, description string
		if req.Name != nil {
			name = *req.Name
		}
		if req.Description != nil {
			description = *req.Description
		}

		p := principalFrom(r.Context())
		project, err := s.projects.Create(r.Context(), p.Tenant.ID, name, description)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, projectResponse{Message: "Project created", Project: project})
	}
}

func (s *Server) GetProjectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := principalFrom(r.Context())
		project, err := s.projects.Get(r.Context(), p.Tenant.ID, r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, projectResponse{Project: project})
	}
}

func (s *Server) UpdateProjectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req projectRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		p := principalFrom(r.Context())
		project, err := s.projects.Update(r.Context(), p.Tenant.ID, r.PathValue("id"), projects.Update{
			Name:        req.Name,
			Description: req.Description,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, projectResponse{Message: "Project updated", Project: project})
	}
}

func (s *Server) DeleteProjectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := principalFrom(r.Context())
		if err := s.projects.Delete(r.Context(), p.Tenant.ID, r.PathValue("id")); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Project deleted"})
	}
}
