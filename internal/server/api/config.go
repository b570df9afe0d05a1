package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/soulfree/internal/config"
)

// ConfigHandler handles reads and writes of the runtime tunables.
type ConfigHandler struct {
	shared *config.Shared
}

// NewConfigHandler creates a new ConfigHandler over the shared tunables.
func NewConfigHandler(s *config.Shared) *ConfigHandler {
	return &ConfigHandler{shared: s}
}

type configResponse struct {
	Values config.Render           `json:"values"`
	Ranges map[string]config.Range `json:"ranges"`
}

type setValueRequest struct {
	Value *float64 `json:"value"`
}

// ServeHTTP routes /api/config and /api/config/{name}.
func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/config")
	name = strings.TrimPrefix(name, "/")

	switch r.Method {
	case http.MethodGet:
		if name == "" {
			h.get(w)
			return
		}
		h.getOne(w, name)
	case http.MethodPut:
		if name == "" {
			h.update(w, r)
			return
		}
		h.setOne(w, r, name)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ConfigHandler) get(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, configResponse{Values: h.shared.Snapshot(), Ranges: config.Ranges})
}

func (h *ConfigHandler) getOne(w http.ResponseWriter, name string) {
	v, err := h.shared.Snapshot().Get(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown tunable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"value": v})
}

// update handles PUT /api/config with a partial object of name to value.
// Either every value is applied or none is.
func (h *ConfigHandler) update(w http.ResponseWriter, r *http.Request) {
	var req map[string]float64
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	values, err := h.shared.Update(func(c *config.Render) error {
		for name, v := range req {
			if err := c.Set(name, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		writeSetError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, configResponse{Values: values, Ranges: config.Ranges})
}

// setOne handles PUT /api/config/{name} with {"value": v}.
func (h *ConfigHandler) setOne(w http.ResponseWriter, r *http.Request, name string) {
	var req setValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == nil {
		writeError(w, http.StatusBadRequest, "Value is required")
		return
	}

	values, err := h.shared.Update(func(c *config.Render) error {
		return c.Set(name, *req.Value)
	})
	if err != nil {
		writeSetError(w, err)
		return
	}

	v, _ := values.Get(name)
	writeJSON(w, http.StatusOK, map[string]float64{"value": v})
}

func writeSetError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, config.ErrUnknownTunable):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, config.ErrOutOfRange):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Failed to update config")
	}
}
