package fixedwidth

import "testing"

func TestSlice(t *testing.T) {
	cases := []struct {
		name       string
		line       string
		start, end int
		want       string
	}{
		{name: "inner range", line: "ABCDEFGHIJ", start: 3, end: 6, want: "CDEF"},
		{name: "start past end of line", line: "AB", start: 5, end: 10, want: ""},
		{name: "empty line", line: "", start: 1, end: 5, want: ""},
		{name: "end past line", line: "ABCDE", start: 4, end: 99, want: "DE"},
		{name: "zero start floors", line: "ABCDE", start: 0, end: 2, want: "AB"},
		{name: "inverted", line: "ABCDE", start: 4, end: 2, want: ""},
		{name: "trims padding", line: "   12345678   X", start: 1, end: 14, want: "12345678"},
		{name: "multibyte columns", line: "ÑANDÚ  S.A.", start: 1, end: 5, want: "ÑANDÚ"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Slice(tc.line, tc.start, tc.end); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestLayoutExtract(t *testing.T) {
	layout := Layout{
		{Name: "identifier", Start: 1, End: 3},
		{Name: "name", Start: 5, End: 9},
		{Name: "amount", Start: 40, End: 50},
	}
	got := layout.Extract("123 JUAN")
	if got["identifier"] != "123" || got["name"] != "JUAN" || got["amount"] != "" {
		t.Fatalf("unexpected fields: %+v", got)
	}
	if layout.Get("123 JUAN", "missing") != "" {
		t.Fatalf("unknown field should be empty")
	}
}
