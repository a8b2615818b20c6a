package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Resolution is the outcome of resolving one step of an access path.
type Resolution uint8

const (
	Found Resolution = iota
	Absent
	Mismatched
)

func (r Resolution) String() string {
	switch r {
	case Found:
		return "found"
	case Absent:
		return "absent"
	case Mismatched:
		return "mismatched"
	default:
		return "Resolution(" + strconv.Itoa(int(r)) + ")"
	}
}

// FilterFieldError explains why a path did not resolve. Selection swallows it,
// since a transaction that produces one simply does not match; Project returns
// it for a matched transaction that cannot become a record.
type FilterFieldError struct {
	Path       string
	Resolution Resolution
}

func (e *FilterFieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Resolution)
}

// node is one JSON value together with the path that reached it.
type node struct {
	path string
	raw  json.RawMessage
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || string(raw) == "null"
}

func (n node) fail(r Resolution) *FilterFieldError {
	return &FilterFieldError{Path: n.path, Resolution: r}
}

// object decodes n as a JSON object.
func (n node) object() (map[string]json.RawMessage, *FilterFieldError) {
	if isNull(n.raw) {
		return nil, n.fail(Absent)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(n.raw, &m); err != nil {
		return nil, n.fail(Mismatched)
	}
	return m, nil
}

// field resolves n.name. A missing key and an explicit null are both Absent.
func (n node) field(name string) (node, *FilterFieldError) {
	m, ferr := n.object()
	if ferr != nil {
		return node{}, ferr
	}
	child := node{path: n.path + "." + name, raw: m[name]}
	if isNull(child.raw) {
		return node{}, child.fail(Absent)
	}
	return child, nil
}

// array decodes n as a JSON array.
func (n node) array() ([]node, *FilterFieldError) {
	if isNull(n.raw) {
		return nil, n.fail(Absent)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(n.raw, &items); err != nil {
		return nil, n.fail(Mismatched)
	}
	out := make([]node, len(items))
	for i, raw := range items {
		out[i] = node{path: n.path + "[" + strconv.Itoa(i) + "]", raw: raw}
	}
	return out, nil
}

// str decodes n as a JSON string.
func (n node) str() (string, *FilterFieldError) {
	if isNull(n.raw) {
		return "", n.fail(Absent)
	}
	var s string
	if err := json.Unmarshal(n.raw, &s); err != nil {
		return "", n.fail(Mismatched)
	}
	return s, nil
}

// variant resolves the payload of an externally tagged enum value. Enums render
// as {"Name": payload} or, for unit variants, as "Name". Any other variant is
// Absent; a value that is neither shape is Mismatched.
func (n node) variant(name string) (node, *FilterFieldError) {
	child := node{path: n.path + "<" + name + ">"}
	if isNull(n.raw) {
		return node{}, n.fail(Absent)
	}
	switch bytes.TrimLeft(n.raw, " \t\r\n")[0] {
	case '"':
		// unit variants carry no payload to descend into
		return node{}, child.fail(Absent)
	case '{':
		m, ferr := n.object()
		if ferr != nil {
			return node{}, ferr
		}
		if len(m) != 1 {
			return node{}, n.fail(Mismatched)
		}
		raw, ok := m[name]
		if !ok || isNull(raw) {
			return node{}, child.fail(Absent)
		}
		child.raw = raw
		return child, nil
	default:
		return node{}, n.fail(Mismatched)
	}
}

// anyVariant resolves the payload of a single-key enum object whatever its name.
func (n node) anyVariant() (node, *FilterFieldError) {
	m, ferr := n.object()
	if ferr != nil {
		return node{}, ferr
	}
	if len(m) != 1 {
		return node{}, n.fail(Mismatched)
	}
	for name, raw := range m {
		child := node{path: n.path + "<" + name + ">", raw: raw}
		if isNull(raw) {
			return node{}, child.fail(Absent)
		}
		return child, nil
	}
	return node{}, n.fail(Absent)
}
