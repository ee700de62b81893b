package util

import (
	"reflect"
	"testing"
)

func TestNormalizeCode(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"hvdc-adopt-he-0476", "HVDC-ADOPT-HE-0476"},
		{" HVDC ADOPT HE 0476 ", "HVDCADOPTHE0476"},
		{"JPTW-71/GRM-123", "JPTW-71/GRM-123"},
		{"PRL-O-046-O4(HE-0486)", "PRL-O-046-O4HE-0486"},
	}
	for _, tc := range cases {
		if got := NormalizeCode(tc.input); got != tc.want {
			t.Fatalf("NormalizeCode(%q)=%q want %q", tc.input, got, tc.want)
		}
	}
}

func TestLooksLikeCode(t *testing.T) {
	if !LooksLikeCode("HVDC-ADOPT-HE-0476") {
		t.Fatal("code rejected")
	}
	if LooksLikeCode("delivery update") {
		t.Fatal("text accepted")
	}
	if LooksLikeCode("a1") {
		t.Fatal("too short accepted")
	}
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("\r\nfirst line\n\n  second  \n")
	want := []string{"first line", "second"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}
}
