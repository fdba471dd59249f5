package apiclient

import (
	"encoding/json"
	"errors"
)

var errNotJSON = errors.New("payload is not JSON")

// Payload is a decoded response body: JSON when the server declared it,
// text otherwise. A body that failed to read or parse is the zero Payload.
type Payload struct {
	JSON json.RawMessage
	Text string
}

func (p Payload) IsJSON() bool { return len(p.JSON) > 0 }

func (p Payload) Empty() bool { return len(p.JSON) == 0 && p.Text == "" }

func (p Payload) Decode(v any) error {
	if !p.IsJSON() {
		return errNotJSON
	}
	return json.Unmarshal(p.JSON, v)
}

func (p Payload) String() string {
	if p.IsJSON() {
		return string(p.JSON)
	}
	return p.Text
}
