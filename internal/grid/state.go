package grid

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// State maps LED index (row-major, row*columns+col) to its colour.
// Missing entries are off.
type State map[int]RGB

// Get returns the colour at index, Off when absent.
func (s State) Get(index int) RGB {
	if c, ok := s[index]; ok {
		return c
	}
	return Off
}

// Clone returns an independent copy.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Lit returns the indices of lit LEDs in ascending order.
func (s State) Lit() []int {
	var idx []int
	for k, v := range s {
		if v.IsOn() {
			idx = append(idx, k)
		}
	}
	sort.Ints(idx)
	return idx
}

// Equal reports whether both states light the same LEDs the same way.
// Explicit Off entries and absent entries compare equal.
func (s State) Equal(other State) bool {
	for k, v := range s {
		if other.Get(k) != v {
			return false
		}
	}
	for k, v := range other {
		if s.Get(k) != v {
			return false
		}
	}
	return true
}

// Snapshot is the full state document served by a wall controller.
type Snapshot struct {
	Rows    int
	Columns int
	Grid    State
}

// MarshalJSON writes the controller format: dimensions plus one
// top-level key per LED index.
//
//	{"rows":2,"columns":2,"0":[255,0,0],"1":[0,0,0]}
func (s Snapshot) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(s.Grid)+2)
	doc["rows"] = s.Rows
	doc["columns"] = s.Columns
	for k, v := range s.Grid {
		doc[strconv.Itoa(k)] = v
	}
	return json.Marshal(doc)
}

// UnmarshalJSON reads the controller format. Keys that are neither
// dimensions nor LED indices are ignored.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	out := Snapshot{Grid: make(State)}
	for key, raw := range doc {
		switch key {
		case "rows":
			if err := json.Unmarshal(raw, &out.Rows); err != nil {
				return fmt.Errorf("rows: %w", err)
			}
		case "columns":
			if err := json.Unmarshal(raw, &out.Columns); err != nil {
				return fmt.Errorf("columns: %w", err)
			}
		default:
			index, err := strconv.Atoi(key)
			if err != nil {
				continue
			}
			var c RGB
			if err := json.Unmarshal(raw, &c); err != nil {
				return fmt.Errorf("led %d: %w", index, err)
			}
			out.Grid[index] = c
		}
	}
	*s = out
	return nil
}

// MarshalGrid encodes a grid as {"index":[r,g,b]} for reset requests.
func MarshalGrid(s State) ([]byte, error) {
	doc := make(map[string]RGB, len(s))
	for k, v := range s {
		doc[strconv.Itoa(k)] = v
	}
	return json.Marshal(doc)
}

// UnmarshalGrid is the inverse of MarshalGrid.
func UnmarshalGrid(data []byte) (State, error) {
	var doc map[string]RGB
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	out := make(State, len(doc))
	for key, v := range doc {
		index, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("invalid led index %q", key)
		}
		out[index] = v
	}
	return out, nil
}
