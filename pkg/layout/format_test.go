package layout

import (
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		layout Layout
		want   string
	}{
		{
			name:   "two rows",
			layout: Layout{{"12", ".", "3"}, {"4", "5", "6"}},
			want:   "[\n  [\"12\", \".\", \"3\"],\n  [\"4\", \"5\", \"6\"]\n]",
		},
		{
			name:   "single token",
			layout: Layout{{"x"}},
			want:   "[\n  [\"x\"]\n]",
		},
		{
			name:   "empty layout",
			layout: Layout{},
			want:   "[\n\n]",
		},
		{
			name:   "nil layout",
			layout: nil,
			want:   "[\n\n]",
		},
		{
			name:   "empty row",
			layout: Layout{{"1"}, {}, {"2"}},
			want:   "[\n  [\"1\"],\n  [],\n  [\"2\"]\n]",
		},
		{
			name:   "escaped token",
			layout: Layout{{`a"b`, `c\d`}},
			want:   "[\n  [\"a\\\"b\", \"c\\\\d\"]\n]",
		},
		{
			name:   "unicode token",
			layout: Layout{{"Ⅻ", "·"}},
			want:   "[\n  [\"Ⅻ\", \"·\"]\n]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.layout); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDeterministic(t *testing.T) {
	lines := []string{"<BEGIN>\n", "12 . . 1\n", "11     2\n", "<END>\n"}

	first, err := Parse(lines)
	if err != nil {
		t.Fatal(err)
	}
	want := Format(first)
	for i := 0; i < 10; i++ {
		l, err := Parse(lines)
		if err != nil {
			t.Fatal(err)
		}
		if got := Format(l); got != want {
			t.Fatalf("Format() run %d = %q, want %q", i, got, want)
		}
	}
}

func TestLayoutString(t *testing.T) {
	l := Layout{{"a"}}
	if l.String() != Format(l) {
		t.Errorf("String() = %q, want %q", l.String(), Format(l))
	}
}
