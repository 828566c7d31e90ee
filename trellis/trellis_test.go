package trellis

import (
	"encoding/json"
	"strconv"
	"testing"
)

func TestBitField(t *testing.T) {
	tests := []struct {
		b      BitField
		i      int
		set    bool
		weight int
	}{
		{0, 0, false, 0},
		{1, 0, true, 1},
		{5, 1, false, 2},
		{5, 2, true, 2},
		{0xff, 7, true, 8},
	}

	for i, test := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			if test.b.Test(test.i) != test.set {
				t.Fatalf("expected %v but found %v", test.set, test.b.Test(test.i))
			}
			if test.b.Weight() != test.weight {
				t.Fatalf("expected %v but found %v", test.weight, test.b.Weight())
			}
			flipped := test.b.Set(test.i, !test.set)
			if flipped.Test(test.i) == test.set {
				t.Fatalf("expected bit %v to change", test.i)
			}
		})
	}
}

func TestNewFeedForward(t *testing.T) {
	g, err := ParseOctal("7", "5")
	if err != nil {
		t.Fatal(err)
	}
	tr, err := New([]int{3}, [][]BitField{g}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if tr.StateSize() != 2 || tr.InputSize() != 1 || tr.OutputSize() != 2 {
		t.Fatalf("unexpected dimensions %v", tr)
	}

	tests := []struct {
		state, input int
		next, output BitField
	}{
		{0, 0, 0, 0},
		{0, 1, 2, 3},
		{2, 0, 1, 1},
		{2, 1, 3, 2},
		{1, 0, 0, 3},
		{1, 1, 2, 0},
		{3, 0, 1, 2},
		{3, 1, 3, 1},
	}
	for i, test := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			if n := tr.NextState(test.state, test.input); n != test.next {
				t.Fatalf("expected next %v but found %v", test.next, n)
			}
			if o := tr.Output(test.state, test.input); o != test.output {
				t.Fatalf("expected output %v but found %v", test.output, o)
			}
		})
	}
}

func TestNewRecursiveIsSystematic(t *testing.T) {
	g, _ := ParseOctal("15", "13")
	f, _ := ParseOctal("15")
	tr, err := New([]int{4}, [][]BitField{g}, f)
	if err != nil {
		t.Fatal(err)
	}
	for s := 0; s < tr.StateCount(); s++ {
		for u := 0; u < tr.InputCount(); u++ {
			if tr.Output(s, u).Test(0) != (u == 1) {
				t.Fatalf("expected systematic output for state %v input %v", s, u)
			}
		}
	}
}

func TestFromTables(t *testing.T) {
	g, _ := ParseOctal("0o133", "0o171")
	tr, err := New([]int{7}, [][]BitField{g}, nil)
	if err != nil {
		t.Fatal(err)
	}
	next, out := tr.Tables()
	copied, err := FromTables(tr.StateSize(), tr.InputSize(), tr.OutputSize(), next, out)
	if err != nil {
		t.Fatal(err)
	}
	if !copied.Equals(tr) {
		t.Fatalf("expected %v but found %v", tr, copied)
	}

	if _, err := FromTables(2, 1, 1, next, out); err == nil {
		t.Fatalf("expected an error for mismatched tables")
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		constraint []int
		generator  [][]BitField
		feedback   []BitField
	}{
		{nil, nil, nil},
		{[]int{3}, [][]BitField{{7}, {5}}, nil},
		{[]int{3}, [][]BitField{{017}}, nil},
		{[]int{3}, [][]BitField{{7, 5}}, []BitField{7, 7}},
		{[]int{0}, [][]BitField{{1}}, nil},
	}
	for i, test := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			if _, err := New(test.constraint, test.generator, test.feedback); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestJSON(t *testing.T) {
	g, _ := ParseOctal("15", "13")
	f, _ := ParseOctal("15")
	tr, err := New([]int{4}, [][]BitField{g}, f)
	if err != nil {
		t.Fatal(err)
	}
	bytes, err := json.Marshal(tr)
	if err != nil {
		t.Fatal(err)
	}
	var actual Trellis
	if err := json.Unmarshal(bytes, &actual); err != nil {
		t.Fatal(err)
	}
	if !actual.Equals(tr) {
		t.Fatalf("expected %v but found %v", tr, &actual)
	}
}
