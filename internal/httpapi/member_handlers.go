package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"modaccess.io/internal/access"
	"modaccess.io/internal/audit"
	"modaccess.io/internal/directory"
)

type createMemberRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	RoleID     string `json:"role_id"`
	Department string `json:"department"`
	Status     string `json:"status"`
}

type updateMemberRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	RoleID     *string `json:"role_id"`
	Department *string `json:"department"`
	Status     *string `json:"status"`
}

func (a *API) handleMembersCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if !a.ensurePermissions(w, r, access.PermViewTeam) {
			return
		}
		q := r.URL.Query()
		members, err := a.members.List(r.Context(), directory.Filter{
			RoleID:     strings.TrimSpace(q.Get("role_id")),
			Department: strings.TrimSpace(q.Get("department")),
			Search:     strings.TrimSpace(q.Get("search")),
		})
		if err != nil {
			handleAccessError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, members)
	case http.MethodPost:
		if !a.ensurePermissions(w, r, access.PermManageTeam) {
			return
		}
		var req createMemberRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		member, err := a.members.Add(r.Context(), req.Name, req.Email, req.RoleID,
			req.Department, directory.MemberStatus(req.Status))
		if err != nil {
			handleAccessError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "directory.member.add", map[string]any{
			"member_id": member.ID,
			"email":     member.Email,
			"role_id":   member.RoleID,
		})
		w.Header().Set("Location", fmt.Sprintf("/v1/members/%s", member.ID))
		writeJSON(w, http.StatusCreated, member)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleMemberResource(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/members/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		if !a.ensurePermissions(w, r, access.PermViewTeam) {
			return
		}
		member, err := a.members.Find(r.Context(), id)
		if err != nil {
			handleAccessError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, member)
	case http.MethodPut:
		if !a.ensurePermissions(w, r, access.PermManageTeam) {
			return
		}
		var req updateMemberRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		upd := directory.MemberUpdate{
			Name:       req.Name,
			Email:      req.Email,
			RoleID:     req.RoleID,
			Department: req.Department,
		}
		if req.Status != nil {
			status := directory.MemberStatus(*req.Status)
			upd.Status = &status
		}
		member, err := a.members.Update(r.Context(), id, upd)
		if err != nil {
			handleAccessError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "directory.member.update", map[string]any{
			"member_id": member.ID,
		})
		writeJSON(w, http.StatusOK, member)
	case http.MethodDelete:
		if !a.ensurePermissions(w, r, access.PermManageTeam) {
			return
		}
		if err := a.members.Delete(r.Context(), id); err != nil {
			handleAccessError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "directory.member.delete", map[string]any{
			"member_id": id,
		})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}
