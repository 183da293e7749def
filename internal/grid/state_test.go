package grid

import (
	"encoding/json"
	"testing"
)

func TestSnapshot_UnmarshalControllerFormat(t *testing.T) {
	body := `{"rows":2,"columns":3,"0":[255,0,0],"4":[0,0,0],"5":[1,2,3],"version":"x"}`

	var s Snapshot
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if s.Rows != 2 || s.Columns != 3 {
		t.Errorf("dimensions = %dx%d, want 2x3", s.Rows, s.Columns)
	}
	if s.Grid.Get(0) != (RGB{255, 0, 0}) {
		t.Errorf("led 0 = %v", s.Grid.Get(0))
	}
	if s.Grid.Get(5) != (RGB{1, 2, 3}) {
		t.Errorf("led 5 = %v", s.Grid.Get(5))
	}
	if s.Grid.Get(3) != Off {
		t.Errorf("absent led 3 = %v, want off", s.Grid.Get(3))
	}
}

func TestSnapshot_UnmarshalRejectsBadChannel(t *testing.T) {
	var s Snapshot
	if err := json.Unmarshal([]byte(`{"rows":1,"columns":1,"0":[256,0,0]}`), &s); err == nil {
		t.Error("Unmarshal() should reject channel > 255")
	}
}

func TestSnapshot_MarshalWritesIndexKeys(t *testing.T) {
	s := Snapshot{Rows: 1, Columns: 2, Grid: State{1: {9, 8, 7}}}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if doc["rows"] != float64(1) || doc["columns"] != float64(2) {
		t.Errorf("dimensions in %s", data)
	}
	if _, ok := doc["1"]; !ok {
		t.Errorf("led key missing in %s", data)
	}
}

func TestGridEncoding(t *testing.T) {
	in := State{0: {255, 0, 0}, 7: {0, 0, 0}}
	data, err := MarshalGrid(in)
	if err != nil {
		t.Fatalf("MarshalGrid() error = %v", err)
	}
	if string(data) != `{"0":[255,0,0],"7":[0,0,0]}` {
		t.Errorf("MarshalGrid() = %s", data)
	}

	if _, err := UnmarshalGrid([]byte(`{"a":[1,2,3]}`)); err == nil {
		t.Error("UnmarshalGrid() should reject non-numeric keys")
	}
}

func TestState_EqualTreatsMissingAsOff(t *testing.T) {
	a := State{0: {1, 1, 1}, 1: Off}
	b := State{0: {1, 1, 1}}
	if !a.Equal(b) || !b.Equal(a) {
		t.Error("states differing only by explicit off should be equal")
	}
	b[2] = RGB{1, 0, 0}
	if a.Equal(b) {
		t.Error("states with different lit LEDs compared equal")
	}
}

func TestState_Lit(t *testing.T) {
	s := State{4: {1, 0, 0}, 1: {0, 2, 0}, 2: Off}
	got := s.Lit()
	if len(got) != 2 || got[0] != 1 || got[1] != 4 {
		t.Errorf("Lit() = %v, want [1 4]", got)
	}
}

func TestState_CloneIsIndependent(t *testing.T) {
	s := State{0: {1, 2, 3}}
	c := s.Clone()
	c[0] = Off
	if s[0] != (RGB{1, 2, 3}) {
		t.Error("Clone() shares storage with original")
	}
}
