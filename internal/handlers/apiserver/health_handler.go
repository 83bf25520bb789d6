package apiserver

import (
	"net/http"

	"gorm.io/gorm"
)

type HealthHandler struct {
	db      *gorm.DB
	version string
}

func NewHealthHandler(db *gorm.DB, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version}
}

// HealthHandler handles GET /healthz. It reports 503 when the database is unreachable.
func (h *HealthHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		writeJSONResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "version": h.version})
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok", "version": h.version})
}
