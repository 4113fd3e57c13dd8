package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"splitshare/internal/middleware"
)

type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type inviteRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := s.groups.CreateGroup(r.Context(), middleware.GetUserID(r.Context()), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.ListGroups(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.groups.GetGroup(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.groups.DeleteGroup(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "groupID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInviteUser(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	err := s.groups.InviteUser(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "groupID"), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveUser(w http.ResponseWriter, r *http.Request) {
	err := s.groups.RemoveUser(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "groupID"),
		chi.URLParam(r, "userID"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGroupSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.groups.Summary(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := s.receipts.ListReceipts(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipts)
}
