package catalog

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Video is one record of the catalog index. Only the fields the library
// consumes are decoded.
type Video struct {
	ID             string   `json:"id,omitempty"`
	Slug           string   `json:"slug,omitempty"`
	Title          string   `json:"title"`
	VideoURL       string   `json:"videoUrl,omitempty"`
	LegacyVideoURL string   `json:"video_url,omitempty"`
	Thumb          string   `json:"thumb"`
	Duration       Duration `json:"duration"`
	Env            []string `json:"env"`
	Risk           []string `json:"risk"`
	Subject        []string `json:"subject"`
	Pilot          []string `json:"pilot"`
	Mood           []string `json:"mood"`
}

// MediaURL prefers videoUrl and falls back to the legacy video_url field.
func (v Video) MediaURL() string {
	if v.VideoURL != "" {
		return v.VideoURL
	}
	return v.LegacyVideoURL
}

// Tags returns the tag list for a questionnaire key (env, risk, subject,
// pilot, mood). Unknown keys have no tags.
func (v Video) Tags(key string) []string {
	switch key {
	case "env":
		return v.Env
	case "risk":
		return v.Risk
	case "subject":
		return v.Subject
	case "pilot":
		return v.Pilot
	case "mood":
		return v.Mood
	}
	return nil
}

// HasTag reports whether the tag list for key contains tag exactly.
func (v Video) HasTag(key, tag string) bool {
	for _, t := range v.Tags(key) {
		if t == tag {
			return true
		}
	}
	return false
}

// Duration is a display string. Some index generators emit it as a number,
// so both forms are accepted.
type Duration string

func (d *Duration) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = Duration(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*d = Duration(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}
