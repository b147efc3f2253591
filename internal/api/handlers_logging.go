package api

import (
	"net/http"

	"github.com/sydlexius/albumlink/internal/logging"
)

// loggingSettings is the part of the logging config exposed over HTTP.
// Output destinations and rotation are only set through the config file.
type loggingSettings struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// loggingUpdate carries the fields a PUT may change. Unknown fields,
// file_path included, are rejected by decodeJSON.
type loggingUpdate struct {
	Level  *string `json:"level"`
	Format *string `json:"format"`
}

func settingsFrom(cfg logging.Config) loggingSettings {
	return loggingSettings{Level: cfg.Level, Format: cfg.Format}
}

func (r *Router) handleGetLogging(w http.ResponseWriter, req *http.Request) {
	if r.logManager == nil {
		writeError(w, req, http.StatusServiceUnavailable, "logging manager not available")
		return
	}
	writeJSON(w, http.StatusOK, settingsFrom(r.logManager.Config()))
}

// handleUpdateLogging changes the level or format at runtime. Fields left
// out of the body keep their current values. The change is not written back
// to the config file, so a later file reload replaces it.
func (r *Router) handleUpdateLogging(w http.ResponseWriter, req *http.Request) {
	if r.logManager == nil {
		writeError(w, req, http.StatusServiceUnavailable, "logging manager not available")
		return
	}

	var body loggingUpdate
	if err := decodeJSON(w, req, &body); err != nil {
		writeError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	cfg := r.logManager.Config()
	if body.Level != nil {
		cfg.Level = *body.Level
	}
	if body.Format != nil {
		cfg.Format = *body.Format
	}

	if !logging.ValidLevel(cfg.Level) {
		writeError(w, req, http.StatusBadRequest, "invalid level; must be debug, info, warn, or error")
		return
	}
	if !logging.ValidFormat(cfg.Format) {
		writeError(w, req, http.StatusBadRequest, "invalid format; must be text or json")
		return
	}

	r.logManager.Reconfigure(cfg)
	r.logger.Info("logging reconfigured", "config", cfg.String())

	writeJSON(w, http.StatusOK, settingsFrom(cfg))
}
