package paymongo

import (
	"encoding/json"
	"fmt"
)

// FlattenMetadata converts metadata to the string-only map the provider accepts.
// Strings pass through, nil becomes "", everything else is JSON encoded.
func FlattenMetadata(in map[string]any) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch val := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = val
		case fmt.Stringer:
			out[k] = val.String()
		default:
			b, err := json.Marshal(val)
			if err != nil {
				out[k] = fmt.Sprint(val)
				continue
			}
			out[k] = string(b)
		}
	}
	return out
}

// Metadata is the metadata map as returned by the provider. Non-string values
// sent by other integrations are stringified instead of failing the decode.
type Metadata map[string]string

func (m *Metadata) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*m = FlattenMetadata(raw)
	return nil
}

func (m Metadata) Get(key string) string {
	if m == nil {
		return ""
	}
	return m[key]
}
