package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"modaccess.io/internal/access"
	"modaccess.io/internal/audit"
	"modaccess.io/internal/auth"
)

type assignModuleRequest struct {
	ModuleID string `json:"module_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type recordAccessRequest struct {
	Action        string `json:"action"`
	SourceAddress string `json:"source_address"`
}

func (a *API) handleAssignmentsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listAssignments(w, r)
	case http.MethodPost:
		a.assignModule(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) listAssignments(w http.ResponseWriter, r *http.Request) {
	if !a.ensurePermissions(w, r, access.PermViewTeam) {
		return
	}
	q := r.URL.Query()
	userID := strings.TrimSpace(q.Get("user_id"))
	moduleID := strings.TrimSpace(q.Get("module_id"))
	if userID != "" && moduleID != "" {
		writeError(w, r, http.StatusBadRequest, "user_id and module_id filters are mutually exclusive")
		return
	}

	var (
		assignments []*access.Assignment
		err         error
	)
	switch {
	case userID != "":
		assignments, err = a.access.ListByUser(r.Context(), userID)
	case moduleID != "":
		assignments, err = a.access.ListByModule(r.Context(), moduleID)
	default:
		assignments, err = a.access.ListAssignments(r.Context())
	}
	if err != nil {
		handleAccessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assignments)
}

func (a *API) assignModule(w http.ResponseWriter, r *http.Request) {
	if !a.ensurePermissions(w, r, access.PermAssignModules) {
		return
	}
	var req assignModuleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	assignment, err := a.access.Assign(r.Context(), req.ModuleID, req.UserID, req.Username, req.Password)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "access.assignment.create", map[string]any{
		"assignment_id": assignment.ID,
		"module_id":     assignment.ModuleID,
		"user_id":       assignment.UserID,
	})
	w.Header().Set("Location", fmt.Sprintf("/v1/assignments/%s", assignment.ID))
	writeJSON(w, http.StatusCreated, assignment)
}

func (a *API) handleAssignmentResource(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/assignments/"), "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	switch {
	case len(parts) == 1:
		a.getAssignment(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "status":
		a.updateAssignmentStatus(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "credentials":
		a.handleAssignmentCredentials(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "access":
		a.handleAssignmentAccess(w, r, parts[0])
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) getAssignment(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.ensurePermissions(w, r, access.PermViewTeam) {
		return
	}
	assignment, err := a.access.Assignment(r.Context(), id)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assignment)
}

func (a *API) updateAssignmentStatus(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	if !a.ensurePermissions(w, r, access.PermAssignModules) {
		return
	}
	var req updateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	assignment, err := a.access.UpdateStatus(r.Context(), id, access.Status(req.Status))
	if err != nil {
		handleAccessError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "access.assignment.status", map[string]any{
		"assignment_id": assignment.ID,
		"status":        assignment.Status,
	})
	writeJSON(w, http.StatusOK, assignment)
}

func (a *API) handleAssignmentCredentials(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodPost:
		if !a.ensurePermissions(w, r, access.PermAssignModules) {
			return
		}
		assignment, err := a.access.ResetCredentials(r.Context(), id, clientIP(r))
		if err != nil {
			handleAccessError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "access.credentials.reset", map[string]any{
			"assignment_id": assignment.ID,
		})
		writeJSON(w, http.StatusOK, assignment)
	case http.MethodGet:
		// Authorization happens inside the core: the actor must hold a
		// role granting manage_team or assign_modules.
		actorID := strings.TrimSpace(r.URL.Query().Get("actor_id"))
		if actorID == "" {
			if subject, ok := auth.ActorIDFromContext(r.Context()); ok {
				actorID = subject
			}
		}
		cred, err := a.access.RevealCredentials(r.Context(), id, actorID)
		if err != nil {
			handleAccessError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "access.credentials.reveal", map[string]any{
			"assignment_id": id,
			"actor_id":      actorID,
		})
		writeJSON(w, http.StatusOK, cred)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleAssignmentAccess(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodPost:
		if !a.ensurePermissions(w, r, access.PermUseModules) {
			return
		}
		var req recordAccessRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		source := strings.TrimSpace(req.SourceAddress)
		if source == "" {
			source = clientIP(r)
		}
		entry, err := a.access.RecordAccess(r.Context(), id, access.Action(req.Action), source)
		if err != nil {
			handleAccessError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, entry)
	case http.MethodGet:
		if !a.ensurePermissions(w, r, access.PermViewTeam) {
			return
		}
		history, err := a.access.History(r.Context(), id)
		if err != nil {
			handleAccessError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, history)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}
