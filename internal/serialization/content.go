package serialization

import (
	"encoding/json"
	"math"
	"strings"
)

// Null is the content of a layer without state.
const Null = "null"

// IsEmpty reports whether content carries no state.
func IsEmpty(content string) bool {
	c := strings.TrimSpace(content)
	return c == "" || c == Null
}

// Encode marshals v to its JSON content.
func Encode(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", &ContentError{Details: err.Error(), Err: ErrNotFinite}
	}
	return string(data), nil
}

// Decode unmarshals content into v. layer names the layer kind for errors.
func Decode(content, layer string, v any) error {
	if err := json.Unmarshal([]byte(content), v); err != nil {
		return malformed(layer, "%v", err)
	}
	return nil
}

// EncodeArray encodes child contents as a JSON array of strings.
func EncodeArray(children []string) (string, error) {
	if children == nil {
		children = []string{}
	}
	return Encode(children)
}

// DecodeArray decodes a JSON array of child contents.
// Empty content decodes to an empty slice.
func DecodeArray(content, layer string) ([]string, error) {
	if IsEmpty(content) {
		return nil, nil
	}
	var children []*string
	if err := Decode(content, layer, &children); err != nil {
		return nil, err
	}
	out := make([]string, len(children))
	for i, c := range children {
		if c != nil {
			out[i] = *c
		}
	}
	return out, nil
}

// At returns the i-th child content, or "" when the array is too short.
func At(children []string, i int) string {
	if i < len(children) {
		return children[i]
	}
	return ""
}

// EncodeBounds encodes values where infinities mean "not observed yet".
// Infinite entries become null, which JSON can represent.
func EncodeBounds(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i, v := range values {
		if !math.IsInf(v, 0) {
			x := v
			out[i] = &x
		}
	}
	return out
}

// DecodeBounds reverses EncodeBounds, replacing null entries with fallback.
func DecodeBounds(values []*float64, fallback float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if v == nil {
			out[i] = fallback
		} else {
			out[i] = *v
		}
	}
	return out
}
