package session

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	ParamMode    = "mode"
	ParamSession = "sess"

	modeSession = "session"
	modeFree    = "free"
)

// Mode is the synchronization gate shared by the cache, the patch queue and
// the tracker. Every remote session operation is a no-op unless Active.
type Mode struct {
	Session bool
	ID      string
}

func (m Mode) Active() bool {
	return m.Session && m.ID != ""
}

// ParseLocation derives the mode from a page location. flag mirrors the
// document-level session marker, which enables session mode even without
// mode=session in the URL. The returned location has the legacy mode=free
// marker removed.
func ParseLocation(raw string, flag bool) (Mode, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Mode{}, "", fmt.Errorf("parse location: %w", err)
	}

	q := u.Query()
	mode := Mode{
		Session: q.Get(ParamMode) == modeSession || flag,
		ID:      strings.TrimSpace(q.Get(ParamSession)),
	}

	if q.Get(ParamMode) == modeFree {
		q.Del(ParamMode)
		u.RawQuery = q.Encode()
	}
	return mode, u.String(), nil
}

// URL builds an in-app navigation URL that keeps the session parameters.
func (m Mode) URL(path string) string {
	if !m.Session {
		return path
	}
	u, err := url.Parse(path)
	if err != nil {
		return path
	}
	q := u.Query()
	q.Set(ParamMode, modeSession)
	if m.ID != "" {
		q.Set(ParamSession, m.ID)
	}
	return u.Path + "?" + q.Encode()
}

// Path is the session resource path for id.
func Path(id string) string {
	return "/v1/sessions/" + url.PathEscape(id)
}
