package decode

import "encoding/json"

// unwrapCollection extracts the element list from a backend collection
// response. Supported shapes, tried in order:
//
//	[...]
//	{"data": [...]}
//	{"data": {"<plural>": [...]}}
//
// No shape matching means an empty list, never an error.
func unwrapCollection(raw json.RawMessage, plural string, diag *Diagnostics) []json.RawMessage {
	if len(raw) == 0 {
		return nil
	}

	var bare []json.RawMessage
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare
	}

	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped.Data) > 0 {
		if err := json.Unmarshal(wrapped.Data, &bare); err == nil {
			return bare
		}

		var keyed map[string]json.RawMessage
		if err := json.Unmarshal(wrapped.Data, &keyed); err == nil {
			if inner, ok := keyed[plural]; ok {
				if err := json.Unmarshal(inner, &bare); err == nil {
					return bare
				}
			}
		}
	}

	diag.warnf("collection %s: unrecognized response shape, treating as empty", plural)
	return nil
}
