package sessions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/SLASHOO/SkyMotion-Library/internal/auth"
	"github.com/SLASHOO/SkyMotion-Library/internal/database"
	"github.com/SLASHOO/SkyMotion-Library/internal/httputil"
	"github.com/SLASHOO/SkyMotion-Library/internal/session"
	"github.com/SLASHOO/SkyMotion-Library/internal/validate"
)

const (
	StatusActive = "active"
	StatusDone   = "done"
)

const documentColumns = `id, status, library_results_json, assistant_settings_json, cover_image_url, created_at, updated_at, completed_at`

// objectFields merge into the stored value with jsonb || when both sides are
// objects.
var objectFields = map[string]bool{
	session.FieldLibrary:   true,
	session.FieldAssistant: true,
}

type Handler struct {
	db database.DBTX
}

func NewHandler(db database.DBTX) *Handler {
	return &Handler{db: db}
}

type documentResponse struct {
	Session *session.Document `json:"session"`
}

type createRequest struct {
	LibraryResults    json.RawMessage `json:"library_results_json"`
	AssistantSettings json.RawMessage `json:"assistant_settings_json"`
}

// Create starts an active session for the member.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	memberID := auth.MemberIDFromContext(r.Context())

	var req createRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil && !errors.Is(err, httputil.ErrEmptyBody) {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	for field, raw := range map[string]json.RawMessage{
		session.FieldLibrary:   req.LibraryResults,
		session.FieldAssistant: req.AssistantSettings,
	} {
		if msg := validate.SessionDoc(field, raw); msg != "" {
			httputil.WriteError(w, http.StatusBadRequest, msg)
			return
		}
	}

	row := h.db.QueryRow(r.Context(),
		`INSERT INTO sessions (member_id, library_results_json, assistant_settings_json)
		 VALUES ($1, $2, $3)
		 RETURNING `+documentColumns,
		memberID, nullableJSON(req.LibraryResults), nullableJSON(req.AssistantSettings),
	)
	doc, err := scanDocument(row)
	if err != nil {
		slog.Error("sessions: create failed", "member_id", memberID, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, documentResponse{Session: doc})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	memberID := auth.MemberIDFromContext(r.Context())
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	row := h.db.QueryRow(r.Context(),
		`SELECT `+documentColumns+` FROM sessions WHERE id = $1 AND member_id = $2`,
		id, memberID,
	)
	h.writeDocument(w, row, "get")
}

// Patch applies a partial document. Object sub-documents merge into stored
// objects key by key; anything else replaces the stored value, and an
// explicit null clears it.
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	memberID := auth.MemberIDFromContext(r.Context())
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var patch map[string]json.RawMessage
	if err := httputil.DecodeJSON(w, r, &patch); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sets, args, msg := buildUpdate(patch, id, memberID)
	if msg != "" {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	row := h.db.QueryRow(r.Context(),
		`UPDATE sessions SET `+strings.Join(sets, ", ")+`
		 WHERE id = $1 AND member_id = $2
		 RETURNING `+documentColumns,
		args...,
	)
	h.writeDocument(w, row, "patch")
}

// Done marks the session finished. Repeating it keeps the first completion
// time.
func (h *Handler) Done(w http.ResponseWriter, r *http.Request) {
	memberID := auth.MemberIDFromContext(r.Context())
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	row := h.db.QueryRow(r.Context(),
		`UPDATE sessions
		 SET status = 'done', completed_at = COALESCE(completed_at, now()), updated_at = now()
		 WHERE id = $1 AND member_id = $2
		 RETURNING `+documentColumns,
		id, memberID,
	)
	h.writeDocument(w, row, "done")
}

func (h *Handler) writeDocument(w http.ResponseWriter, row pgx.Row, op string) {
	doc, err := scanDocument(row)
	if errors.Is(err, pgx.ErrNoRows) {
		httputil.WriteError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		slog.Error("sessions: query failed", "op", op, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to "+op+" session")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, documentResponse{Session: doc})
}

// buildUpdate turns a patch into SET clauses. Arguments $1 and $2 are the
// session and member ids.
func buildUpdate(patch map[string]json.RawMessage, id, memberID string) ([]string, []any, string) {
	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sets := make([]string, 0, len(keys)+1)
	args := []any{id, memberID}
	for _, k := range keys {
		raw := bytes.TrimSpace(patch[k])
		isNull := bytes.Equal(raw, []byte("null"))

		switch {
		case objectFields[k]:
			if msg := validate.SessionDoc(k, raw); msg != "" {
				return nil, nil, msg
			}
			if isNull {
				sets = append(sets, k+" = NULL")
				continue
			}
			args = append(args, []byte(raw))
			n := len(args)
			if len(raw) > 0 && raw[0] == '{' {
				sets = append(sets, fmt.Sprintf(
					"%[1]s = CASE WHEN jsonb_typeof(%[1]s) = 'object' THEN %[1]s || $%[2]d::jsonb ELSE $%[2]d::jsonb END", k, n))
			} else {
				sets = append(sets, fmt.Sprintf("%s = $%d::jsonb", k, n))
			}
		case k == session.FieldCover:
			if isNull {
				sets = append(sets, k+" = NULL")
				continue
			}
			var cover string
			if err := json.Unmarshal(raw, &cover); err != nil {
				return nil, nil, "cover_image_url must be a string or null"
			}
			if msg := validate.CoverURL(cover); msg != "" {
				return nil, nil, msg
			}
			args = append(args, cover)
			sets = append(sets, fmt.Sprintf("%s = $%d", k, len(args)))
		default:
			return nil, nil, fmt.Sprintf("unknown field %q", k)
		}
	}
	sets = append(sets, "updated_at = now()")
	return sets, args, ""
}

func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, http.StatusNotFound, "session not found")
		return "", false
	}
	return id.String(), true
}

func scanDocument(row pgx.Row) (*session.Document, error) {
	var (
		doc         session.Document
		library     []byte
		assistant   []byte
		createdAt   time.Time
		updatedAt   time.Time
		completedAt *time.Time
	)
	if err := row.Scan(&doc.ID, &doc.Status, &library, &assistant, &doc.CoverImageURL, &createdAt, &updatedAt, &completedAt); err != nil {
		return nil, err
	}
	doc.LibraryResults = library
	doc.AssistantSettings = assistant
	doc.CreatedAt = &createdAt
	doc.UpdatedAt = &updatedAt
	doc.CompletedAt = completedAt
	return &doc, nil
}

func nullableJSON(raw json.RawMessage) any {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	return []byte(raw)
}
