package source

import (
	"bytes"
	"encoding/json"
	"strings"
)

type specPair struct {
	key   string
	value json.RawMessage
}

// RepairSpecifications fixes the scraper's shifted layout where every other
// key is really the previous value, e.g.
//
//	{"MAKER":"Classification","MITSUBISHI":"PLC"} -> {"MAKER":"MITSUBISHI","Classification":"PLC"}
//
// Only blobs containing a MAKER key are touched. Anything unparseable is
// returned unchanged. The repair is not idempotent.
func RepairSpecifications(raw string) string {
	if strings.TrimSpace(raw) == "" || strings.TrimSpace(raw) == "{}" {
		return raw
	}

	pairs, ok := decodePairs(raw)
	if !ok || len(pairs) < 2 || !hasKey(pairs, "MAKER") {
		return raw
	}

	fixed := newOrderedSpecs()
	for i := 0; i+1 < len(pairs); i += 2 {
		curr, next := pairs[i], pairs[i+1]
		fixed.set(curr.key, quote(next.key))
		fixed.set(textOf(curr.value), next.value)
	}
	if len(pairs)%2 == 1 {
		last := pairs[len(pairs)-1]
		fixed.set(last.key, last.value)
	}

	return fixed.encode()
}

func decodePairs(raw string) ([]specPair, bool) {
	dec := json.NewDecoder(strings.NewReader(raw))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil, false
	}

	var pairs []specPair
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, ok := tok.(string)
		if !ok {
			return nil, false
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, false
		}
		pairs = append(pairs, specPair{key: key, value: value})
	}

	if tok, err := dec.Token(); err != nil || tok != json.Delim('}') {
		return nil, false
	}
	return pairs, true
}

func hasKey(pairs []specPair, key string) bool {
	for _, p := range pairs {
		if p.key == key {
			return true
		}
	}
	return false
}

// textOf returns the string content of a JSON value, or its literal text for
// non-string values.
func textOf(value json.RawMessage) string {
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(value))
}

func quote(s string) json.RawMessage {
	encoded, _ := json.Marshal(s)
	return encoded
}

// orderedSpecs keeps first-insertion order while later writes replace values.
type orderedSpecs struct {
	keys   []string
	values map[string]json.RawMessage
}

func newOrderedSpecs() *orderedSpecs {
	return &orderedSpecs{values: make(map[string]json.RawMessage)}
}

func (o *orderedSpecs) set(key string, value json.RawMessage) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

func (o *orderedSpecs) encode() string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.Write(quote(key))
		buf.WriteString(": ")
		buf.Write(o.values[key])
	}
	buf.WriteByte('}')
	return buf.String()
}
