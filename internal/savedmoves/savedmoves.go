package savedmoves

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/SLASHOO/SkyMotion-Library/internal/auth"
	"github.com/SLASHOO/SkyMotion-Library/internal/database"
	"github.com/SLASHOO/SkyMotion-Library/internal/httputil"
	"github.com/SLASHOO/SkyMotion-Library/internal/validate"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

const moveColumns = `id, title, thumb, video_url, duration, env, risk, subject, pilot, mood, created_at`

type Handler struct {
	db database.DBTX
}

func NewHandler(db database.DBTX) *Handler {
	return &Handler{db: db}
}

type moveItem struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Thumb     string   `json:"thumb"`
	VideoURL  string   `json:"video_url"`
	Duration  string   `json:"duration"`
	Env       []string `json:"env"`
	Risk      []string `json:"risk"`
	Subject   []string `json:"subject"`
	Pilot     []string `json:"pilot"`
	Mood      []string `json:"mood"`
	CreatedAt string   `json:"created_at"`
}

type listResponse struct {
	Items []moveItem `json:"items"`
}

type createRequest struct {
	ID       string   `json:"id" validate:"required,max=512"`
	Title    string   `json:"title" validate:"max=500"`
	Thumb    string   `json:"thumb" validate:"max=2048"`
	VideoURL string   `json:"video_url" validate:"max=2048"`
	Duration string   `json:"duration" validate:"max=32"`
	Env      []string `json:"env" validate:"max=32,dive,max=64"`
	Risk     []string `json:"risk" validate:"max=32,dive,max=64"`
	Subject  []string `json:"subject" validate:"max=32,dive,max=64"`
	Pilot    []string `json:"pilot" validate:"max=32,dive,max=64"`
	Mood     []string `json:"mood" validate:"max=32,dive,max=64"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	memberID := auth.MemberIDFromContext(r.Context())
	limit := queryInt(r, "limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)
	offset := max(queryInt(r, "offset", 0), 0)

	rows, err := h.db.Query(r.Context(),
		`SELECT `+moveColumns+`
		 FROM saved_moves
		 WHERE member_id = $1
		 ORDER BY created_at DESC, id
		 LIMIT $2 OFFSET $3`,
		memberID, limit, offset,
	)
	if err != nil {
		slog.Error("savedmoves: list failed", "member_id", memberID, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list saved moves")
		return
	}
	defer rows.Close()

	items := make([]moveItem, 0)
	for rows.Next() {
		var item moveItem
		var createdAt time.Time
		if err := rows.Scan(&item.ID, &item.Title, &item.Thumb, &item.VideoURL, &item.Duration,
			&item.Env, &item.Risk, &item.Subject, &item.Pilot, &item.Mood, &createdAt); err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "failed to scan saved move")
			return
		}
		item.CreatedAt = createdAt.Format(time.RFC3339)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list saved moves")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, listResponse{Items: items})
}

// Create saves a move. Saving an id the member already saved is not an error
// and leaves the stored move untouched.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	memberID := auth.MemberIDFromContext(r.Context())

	var req createRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	if msg := validate.Struct(req); msg != "" {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	tag, err := h.db.Exec(r.Context(),
		`INSERT INTO saved_moves (member_id, id, title, thumb, video_url, duration, env, risk, subject, pilot, mood)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (member_id, id) DO NOTHING`,
		memberID, req.ID, req.Title, req.Thumb, req.VideoURL, req.Duration,
		tags(req.Env), tags(req.Risk), tags(req.Subject), tags(req.Pilot), tags(req.Mood),
	)
	if err != nil {
		slog.Error("savedmoves: create failed", "member_id", memberID, "id", req.ID, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to save move")
		return
	}

	status := http.StatusCreated
	if tag.RowsAffected() == 0 {
		status = http.StatusOK
	}
	httputil.WriteJSON(w, status, map[string]string{"id": req.ID})
}

// Delete removes a saved move. Deleting a move that is not saved succeeds.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	memberID := auth.MemberIDFromContext(r.Context())
	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil || id == "" {
		httputil.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if msg := validate.SavedID(id); msg != "" {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	if _, err := h.db.Exec(r.Context(),
		`DELETE FROM saved_moves WHERE member_id = $1 AND id = $2`,
		memberID, id,
	); err != nil {
		slog.Error("savedmoves: delete failed", "member_id", memberID, "id", id, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to delete saved move")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func tags(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

