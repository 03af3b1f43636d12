package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Slot records are plain structs with stable field tags, so JSON output is
// portable across codec implementations: a snapshot written with JSON opens
// with GoJSON and vice versa only when the recorded codec name matches, but
// the byte-level payload format is interchangeable.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the codec used when none is configured.
//
// This affects newly written snapshots only. Existing files are
// self-describing (they record the codec name in their header) and are
// opened by selecting the codec by name.
var Default Codec = GoJSON{}
