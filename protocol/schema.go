package protocol

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// EventSchema returns the JSON Schema of the event wire object, indented.
func EventSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
	}
	s := r.Reflect(&WireEvent{})
	s.Title = "duet event"
	s.Description = "Event delivered from the UI to the script runtime."
	return json.MarshalIndent(s, "", "  ")
}
