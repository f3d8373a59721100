package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Kind discriminates the payload of a [Value].
type Kind int

const (
	// KindNotApplicable marks a metric that is undefined for the graph shape.
	KindNotApplicable Kind = iota
	// KindInt holds an integer metric (counts, path lengths).
	KindInt
	// KindFloat holds a real-valued metric (density, entropy, ratios).
	KindFloat
	// KindList holds an ordered list of node identifiers.
	KindList
	// KindDistribution holds an integer frequency distribution
	// (value -> occurrence count).
	KindDistribution
)

// Value is a single metric result: exactly one of an integer, a float, a
// node list, a frequency distribution, or the not-applicable sentinel.
// The zero value is [NotApplicable].
type Value struct {
	kind Kind
	num  float64
	list []string
	dist map[int]int
}

// NotApplicable is the sentinel reported for metrics that are undefined on
// the given graph. It marshals to the JSON string "N/A".
var NotApplicable = Value{kind: KindNotApplicable}

// IntValue wraps an integer metric.
func IntValue(v int) Value { return Value{kind: KindInt, num: float64(v)} }

// FloatValue wraps a real-valued metric.
func FloatValue(v float64) Value { return Value{kind: KindFloat, num: v} }

// ListValue wraps an ordered node list. The slice is retained.
func ListValue(v []string) Value { return Value{kind: KindList, list: v} }

// DistValue wraps a frequency distribution. The map is retained.
func DistValue(v map[int]int) Value { return Value{kind: KindDistribution, dist: v} }

// Kind returns the payload discriminator.
func (v Value) Kind() Kind { return v.kind }

// IsNA reports whether the value is the not-applicable sentinel.
func (v Value) IsNA() bool { return v.kind == KindNotApplicable }

// Int returns the integer payload. ok is false for non-integer values.
func (v Value) Int() (n int, ok bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return int(v.num), true
}

// Float returns the numeric payload as a float for both integer and float
// values. ok is false otherwise.
func (v Value) Float() (f float64, ok bool) {
	if v.kind != KindInt && v.kind != KindFloat {
		return 0, false
	}
	return v.num, true
}

// List returns the node-list payload, or nil for other kinds.
func (v Value) List() []string {
	if v.kind != KindList {
		return nil
	}
	return v.list
}

// Dist returns the distribution payload, or nil for other kinds.
func (v Value) Dist() map[int]int {
	if v.kind != KindDistribution {
		return nil
	}
	return v.dist
}

// Equal reports whether two values have the same kind and payload.
// Used to compute changed-metric diffs between graph revisions.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt, KindFloat:
		return v.num == o.num
	case KindList:
		return slices.Equal(v.list, o.list)
	case KindDistribution:
		if len(v.dist) != len(o.dist) {
			return false
		}
		for k, n := range v.dist {
			if o.dist[k] != n {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String formats the value for human-readable output.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.Itoa(int(v.num))
	case KindFloat:
		return strconv.FormatFloat(v.num, 'g', 4, 64)
	case KindList:
		return "[" + strings.Join(v.list, " ") + "]"
	case KindDistribution:
		keys := make([]int, 0, len(v.dist))
		for k := range v.dist {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%d:%d", k, v.dist[k])
		}
		return "{" + strings.Join(parts, " ") + "}"
	default:
		return "N/A"
	}
}

// MarshalJSON encodes integers and floats as numbers, lists as arrays,
// distributions as objects keyed by stringified value (sorted), and the
// not-applicable sentinel as the string "N/A". Floats always carry a
// decimal point or exponent so the kind survives a decode round trip even
// for whole-number values like a ratio of 1.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return json.Marshal(int(v.num))
	case KindFloat:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return nil, fmt.Errorf("unsupported float metric value %v", v.num)
		}
		s := strconv.FormatFloat(v.num, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return []byte(s), nil
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case KindDistribution:
		keys := make([]int, 0, len(v.dist))
		for k := range v.dist {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			fmt.Fprintf(&buf, "%q:%d", strconv.Itoa(k), v.dist[k])
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return json.Marshal("N/A")
	}
}

// UnmarshalJSON restores a value written by MarshalJSON. Numbers without a
// fractional part decode as integers; this matches how the metric producers
// choose kinds.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case string:
		if t != "N/A" {
			return fmt.Errorf("unexpected metric string %q", t)
		}
		*v = NotApplicable
	case float64:
		if t == float64(int(t)) && !bytes.ContainsAny(data, ".eE") {
			*v = IntValue(int(t))
		} else {
			*v = FloatValue(t)
		}
	case []any:
		list := make([]string, len(t))
		for i, e := range t {
			s, ok := e.(string)
			if !ok {
				return fmt.Errorf("unexpected metric list element %v", e)
			}
			list[i] = s
		}
		*v = ListValue(list)
	case map[string]any:
		dist := make(map[int]int, len(t))
		for k, e := range t {
			key, err := strconv.Atoi(k)
			if err != nil {
				return fmt.Errorf("distribution key %q: %w", k, err)
			}
			n, ok := e.(float64)
			if !ok {
				return fmt.Errorf("distribution count %v", e)
			}
			dist[key] = int(n)
		}
		*v = DistValue(dist)
	default:
		return fmt.Errorf("unexpected metric value %v", raw)
	}
	return nil
}

// Snapshot is an ordered metric-name -> [Value] mapping. Keys preserve the
// order in which [Evaluate] computed them, so serialized output is stable
// across runs.
type Snapshot struct {
	names  []string
	values map[string]Value
}

func newSnapshot() *Snapshot {
	return &Snapshot{values: make(map[string]Value)}
}

func (s *Snapshot) set(name string, v Value) {
	if _, ok := s.values[name]; !ok {
		s.names = append(s.names, name)
	}
	s.values[name] = v
}

// Get returns the value for a metric name.
func (s *Snapshot) Get(name string) (Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Names returns the metric names in computation order.
func (s *Snapshot) Names() []string { return slices.Clone(s.names) }

// Len returns the number of metrics in the snapshot.
func (s *Snapshot) Len() int { return len(s.names) }

// Diff returns the names of metrics whose values differ between s and o,
// in s's key order. Metrics present in only one snapshot always differ.
func (s *Snapshot) Diff(o *Snapshot) []string {
	var changed []string
	for _, name := range s.names {
		ov, ok := o.values[name]
		if !ok || !s.values[name].Equal(ov) {
			changed = append(changed, name)
		}
	}
	return changed
}

// MarshalJSON encodes the snapshot as a JSON object preserving key order.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores a snapshot, preserving the object's key order.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok != json.Delim('{') {
		return fmt.Errorf("snapshot: expected object, got %v", tok)
	}

	s.names = nil
	s.values = make(map[string]Value)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("snapshot: expected key, got %v", keyTok)
		}
		var v Value
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("snapshot key %q: %w", name, err)
		}
		s.set(name, v)
	}
	return nil
}
