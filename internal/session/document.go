package session

import (
	"encoding/json"
	"time"
)

// Sub-object fields merged key by key; every other field is replaced.
const (
	FieldLibrary   = "library_results_json"
	FieldAssistant = "assistant_settings_json"
	FieldCover     = "cover_image_url"
)

// Null writes an explicit JSON null. A nil interface value in a Patch means
// "undefined" and is stripped instead.
var Null = json.RawMessage("null")

// Document is the server's session record.
type Document struct {
	ID                string          `json:"id"`
	Status            string          `json:"status,omitempty"`
	LibraryResults    json.RawMessage `json:"library_results_json,omitempty"`
	AssistantSettings json.RawMessage `json:"assistant_settings_json,omitempty"`
	CoverImageURL     *string         `json:"cover_image_url"`
	CreatedAt         *time.Time      `json:"created_at,omitempty"`
	UpdatedAt         *time.Time      `json:"updated_at,omitempty"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
}

// Library returns library_results_json as an object, or nil when absent or
// not an object.
func (d *Document) Library() map[string]any {
	if d == nil {
		return nil
	}
	return decodeObject(d.LibraryResults)
}

// Assistant returns assistant_settings_json as an object, or nil.
func (d *Document) Assistant() map[string]any {
	if d == nil {
		return nil
	}
	return decodeObject(d.AssistantSettings)
}

// OpenedVideos lists library_results_json.opened_videos as strings.
func (d *Document) OpenedVideos() []string {
	list, ok := d.Library()["opened_videos"].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		switch s := v.(type) {
		case string:
			out = append(out, s)
		case float64:
			out = append(out, formatNumber(s))
		}
	}
	return out
}

// SelectedTitle is the title of library_results_json.selected_video.
func (d *Document) SelectedTitle() string {
	selected, _ := d.Library()["selected_video"].(map[string]any)
	title, _ := selected["title"].(string)
	return title
}

func decodeObject(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj
}

func formatNumber(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}
