package align

import (
	"reflect"
	"testing"
)

func TestOpcodes(t *testing.T) {
	tests := []struct {
		name string
		a    []string
		b    []string
		want []opcode
	}{
		{
			name: "identical sequences",
			a:    []string{"x", "y"},
			b:    []string{"x", "y"},
			want: []opcode{{tagEqual, 0, 2, 0, 2}},
		},
		{
			name: "replace in the middle",
			a:    []string{"a", "b", "c"},
			b:    []string{"a", "x", "c"},
			want: []opcode{
				{tagEqual, 0, 1, 0, 1},
				{tagReplace, 1, 2, 1, 2},
				{tagEqual, 2, 3, 2, 3},
			},
		},
		{
			name: "insert in the middle",
			a:    []string{"a", "c"},
			b:    []string{"a", "b", "c"},
			want: []opcode{
				{tagEqual, 0, 1, 0, 1},
				{tagInsert, 1, 1, 1, 2},
				{tagEqual, 1, 2, 2, 3},
			},
		},
		{
			name: "delete in the middle",
			a:    []string{"a", "b", "c"},
			b:    []string{"a", "c"},
			want: []opcode{
				{tagEqual, 0, 1, 0, 1},
				{tagDelete, 1, 2, 1, 1},
				{tagEqual, 2, 3, 1, 2},
			},
		},
		{
			name: "trailing insert",
			a:    []string{"a"},
			b:    []string{"a", "b"},
			want: []opcode{
				{tagEqual, 0, 1, 0, 1},
				{tagInsert, 1, 1, 1, 2},
			},
		},
		{
			name: "nothing in common",
			a:    []string{"q"},
			b:    []string{"z"},
			want: []opcode{{tagReplace, 0, 1, 0, 1}},
		},
		{
			name: "empty left side",
			a:    nil,
			b:    []string{"x"},
			want: []opcode{{tagInsert, 0, 0, 0, 1}},
		},
		{
			name: "empty right side",
			a:    []string{"x"},
			b:    nil,
			want: []opcode{{tagDelete, 0, 1, 0, 0}},
		},
		{
			name: "both empty",
			a:    nil,
			b:    nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := opcodes(tt.a, tt.b)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("opcodes(%v, %v) = %+v, want %+v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestOpcodesCoverBothSequences(t *testing.T) {
	a := []string{"the", "quick", "brown", "fox", "jumps"}
	b := []string{"quick", "red", "fox", "leaps", "high"}

	ops := opcodes(a, b)
	if len(ops) == 0 {
		t.Fatal("expected opcodes, got none")
	}

	i, j := 0, 0
	for _, op := range ops {
		if op.i1 != i || op.j1 != j {
			t.Fatalf("opcode %+v does not continue from (%d, %d)", op, i, j)
		}
		if op.i2 < op.i1 || op.j2 < op.j1 {
			t.Fatalf("opcode %+v has a negative span", op)
		}
		i, j = op.i2, op.j2
	}
	if i != len(a) || j != len(b) {
		t.Errorf("opcodes end at (%d, %d), want (%d, %d)", i, j, len(a), len(b))
	}
}
