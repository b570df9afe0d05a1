package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/soulfree/internal/journal"
)

// DefaultJournalLimit caps transition listings when no limit is given.
const DefaultJournalLimit = 100

// JournalHandler serves the in-memory session journal.
type JournalHandler struct {
	journal *journal.Journal
	current func() string
}

// NewJournalHandler creates a handler over j. current returns the id of the
// running session and may return "".
func NewJournalHandler(j *journal.Journal, current func() string) *JournalHandler {
	return &JournalHandler{journal: j, current: current}
}

type transitionsResponse struct {
	Session     *journal.Session `json:"session"`
	Transitions []*journal.Entry `json:"transitions"`
	Total       int              `json:"total"`
}

type sessionsResponse struct {
	Sessions []*journal.Session `json:"sessions"`
}

// ServeHTTP routes:
//
//	GET /api/journal               transitions of the current session
//	GET /api/journal/sessions      every session, newest first
//	GET /api/journal/{session-id}  transitions of one session
func (h *JournalHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/journal")
	path = strings.TrimPrefix(path, "/")

	switch path {
	case "sessions":
		h.sessions(w)
	case "":
		id := ""
		if h.current != nil {
			id = h.current()
		}
		if id == "" {
			writeError(w, http.StatusNotFound, "No active session")
			return
		}
		h.transitions(w, r, id)
	default:
		h.transitions(w, r, path)
	}
}

func (h *JournalHandler) sessions(w http.ResponseWriter) {
	sessions, err := h.journal.Sessions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []*journal.Session{}
	}
	writeJSON(w, http.StatusOK, sessionsResponse{Sessions: sessions})
}

func (h *JournalHandler) transitions(w http.ResponseWriter, r *http.Request, id string) {
	limit := DefaultJournalLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	session, err := h.journal.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, journal.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	entries, err := h.journal.Transitions().ListBySession(id, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transitions")
		return
	}
	total, err := h.journal.Transitions().Count(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count transitions")
		return
	}
	if entries == nil {
		entries = []*journal.Entry{}
	}

	writeJSON(w, http.StatusOK, transitionsResponse{Session: session, Transitions: entries, Total: total})
}
