package server

import (
	"net/http"

	"github.com/jrsteele09/tenant-auth-server/auth"
	"github.com/jrsteele09/tenant-auth-server/memberships"
)

type addMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type updateMemberRequest struct {
	Role string `json:"role"`
}

func (s *Server) ListMembersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := principalFrom(r.Context())
		members, err := s.members.List(r.Context(), p.Tenant.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]*memberships.Member{"members": members})
	}
}

func (s *Server) AddMemberHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addMemberRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		p := principalFrom(r.Context())
		membership, err := s.members.Add(r.Context(), p.Tenant.ID, callerOf(p), req.Email, req.Role)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, struct {
			Message    string                  `json:"message"`
			Membership *memberships.Membership `json:"membership"`
		}{Message: "Member added", Membership: membership})
	}
}

func (s *Server) UpdateMemberHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateMemberRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		p := principalFrom(r.Context())
		member, err := s.members.UpdateRole(r.Context(), p.Tenant.ID, callerOf(p), r.PathValue("id"), req.Role)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Message string                  `json:"message"`
			Member  *memberships.Membership `json:"member"`
		}{Message: "Role updated", Member: member})
	}
}

func (s *Server) RemoveMemberHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := principalFrom(r.Context())
		if err := s.members.Remove(r.Context(), p.Tenant.ID, callerOf(p), r.PathValue("id")); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Member removed"})
	}
}

func callerOf(p *auth.Principal) memberships.Caller {
	return memberships.Caller{UserID: p.UserID(), Role: p.Membership.Role}
}
