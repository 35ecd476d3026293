package classify

import "testing"

func TestHasSuccessMarker(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{line: "Registro 4 OK", want: true},
		{line: "Registro 4 ok procesado", want: true},
		{line: "Registro 4 ОК", want: true},  // Cyrillic
		{line: "Registro 4 ΟΚ", want: true},  // Greek
		{line: "Registro 4 ＯＫ", want: true}, // fullwidth
		{line: "Registro 4 CUENTA INEXISTENTE", want: false},
		{line: "BROKEN ACCOUNT", want: false},
	}
	for _, tc := range cases {
		if got := HasSuccessMarker(tc.line); got != tc.want {
			t.Fatalf("HasSuccessMarker(%q)=%v want %v", tc.line, got, tc.want)
		}
	}
}

func TestClassifyByKnownMarkersOrder(t *testing.T) {
	rules := []KeywordRule{{Code: "R002", Keywords: []string{"cuenta inexistente"}}}
	fallback := Code{Code: "R002", Description: "CUENTA INVALIDA"}
	line := "Registro 2 OK - CUENTA INEXISTENTE"

	if _, rejected := ClassifyByKnownMarkers(line, MarkersFirst, rules, testTable(), fallback); rejected {
		t.Fatal("markers-first should skip a confirmed line")
	}
	c, rejected := ClassifyByKnownMarkers(line, KeywordsFirst, rules, testTable(), fallback)
	if !rejected || c.Code != "R002" || !c.Matched {
		t.Fatalf("keywords-first got %+v rejected=%v", c, rejected)
	}
	if _, rejected := ClassifyByKnownMarkers("Registro 2 OK", KeywordsFirst, rules, testTable(), fallback); rejected {
		t.Fatal("keywords-first should still skip a plain confirmation")
	}
	c, rejected = ClassifyByKnownMarkers("Registro 9 sin datos", MarkersFirst, rules, testTable(), fallback)
	if !rejected || c.Matched || c.Code != "R002" {
		t.Fatalf("fallback got %+v rejected=%v", c, rejected)
	}
}
