package widget

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
)

const dash = "—"

// Summary is the data behind the session pill.
type Summary struct {
	Session     bool
	CameraReady string
	ISO         string
	ND          string
	Picked      string
	SavedCount  int
}

// Summary reports camera readiness, the recommended photo settings, the
// picked video and the saved count. Without a session snapshot every value
// is a dash and nothing is picked.
func (w *Widget) Summary(ctx context.Context) Summary {
	s := Summary{
		Session:     w.mode.Session,
		CameraReady: dash,
		ISO:         dash,
		ND:          dash,
		Picked:      "None",
		SavedCount:  w.saved.Count(),
	}
	if !w.mode.Session {
		return s
	}

	doc := w.cache.Get(ctx, false)
	if doc == nil {
		return s
	}

	raw := bytes.TrimSpace(doc.AssistantSettings)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		s.CameraReady = "Ready"
	} else {
		s.CameraReady = "Skipped"
	}

	photo := photoSettings(doc.Assistant())
	s.ISO = display(photo, "ISO", "iso")
	s.ND = display(photo, "ND Filter", "nd_filter")
	if title := doc.SelectedTitle(); title != "" {
		s.Picked = title
	}
	return s
}

func photoSettings(assistant map[string]any) map[string]any {
	if rec, ok := assistant["recommended_settings"].(map[string]any); ok {
		if p, ok := rec["photo_settings"].(map[string]any); ok {
			return p
		}
	}
	if p, ok := assistant["photo_settings"].(map[string]any); ok {
		return p
	}
	if p, ok := assistant["photo"].(map[string]any); ok {
		return p
	}
	return nil
}

func display(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			if v != 0 {
				return strconv.FormatFloat(v, 'f', -1, 64)
			}
		case bool:
			if v {
				return "true"
			}
		case nil:
		default:
			return fmt.Sprint(v)
		}
	}
	return dash
}
