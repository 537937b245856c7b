package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"modaccess.io/internal/access"
	"modaccess.io/internal/catalog"
)

func (a *API) handleModulesCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.ensurePermissions(w, r, access.PermUseModules) {
		return
	}
	q := r.URL.Query()
	filter := catalog.Filter{
		Category:     strings.TrimSpace(q.Get("category")),
		RequiredRole: strings.TrimSpace(q.Get("required_role")),
		Status:       strings.TrimSpace(q.Get("status")),
		MinVersion:   strings.TrimSpace(q.Get("min_version")),
		Search:       strings.TrimSpace(q.Get("search")),
	}
	if raw := q.Get("min_downloads"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			writeError(w, r, http.StatusBadRequest, "min_downloads must be a non-negative integer")
			return
		}
		filter.MinDownloads = v
	}
	if raw := q.Get("max_size_mb"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			writeError(w, r, http.StatusBadRequest, "max_size_mb must be a non-negative number")
			return
		}
		filter.MaxSizeMB = v
	}
	writeJSON(w, http.StatusOK, a.modules.Select(r.Context(), filter))
}

func (a *API) handleModuleResource(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/modules/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.ensurePermissions(w, r, access.PermUseModules) {
		return
	}
	module, err := a.modules.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, r, http.StatusInternalServerError, "catalog lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, module)
}
