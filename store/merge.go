package store

import (
	"encoding/json"
	"fmt"
)

// MergeJSON applies set to the JSON object in body and returns the new
// object. Backends that keep records as JSON text use it to implement Update.
func MergeJSON(body []byte, set Fields) ([]byte, error) {
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	for k, v := range set {
		if v == nil {
			delete(doc, k)
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode field %q: %w", k, err)
		}
		doc[k] = raw
	}
	return json.Marshal(doc)
}
