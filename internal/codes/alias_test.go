package codes

import "testing"

func TestResolveVendor(t *testing.T) {
	r := NewResolver(MustRegistry())

	cases := []struct {
		token string
		want  string
	}{
		{"he", "Hitachi Energy"},
		{"HE", "Hitachi Energy"},
		{"  Hitachi Energy ", "Hitachi Energy"},
		{"sct", "Samsung C&T"},
		{"mosb", "MOSB"},
		{"unknownxyz", "Unknownxyz"},
		{"ACME LOGISTICS", "Acme Logistics"},
	}
	for _, tc := range cases {
		if got := r.ResolveVendor(tc.token); got != tc.want {
			t.Fatalf("ResolveVendor(%q)=%q want %q", tc.token, got, tc.want)
		}
	}
}

func TestResolveVendorNeverEmpty(t *testing.T) {
	r := NewResolver(MustRegistry())
	if got := r.ResolveVendor("x"); got == "" {
		t.Fatal("empty resolution")
	}
}

func TestResolveSite(t *testing.T) {
	r := NewResolver(MustRegistry())

	cases := []struct {
		token string
		want  string
	}{
		{"das", "DAS Site"},
		{"AGI", "AGI Site"},
		{"mirfa", "MIRFA Site"},
		{"ghallan", "GHALLAN Site"},
		{"newsite", "NEWSITE"},
	}
	for _, tc := range cases {
		if got := r.ResolveSite(tc.token); got != tc.want {
			t.Fatalf("ResolveSite(%q)=%q want %q", tc.token, got, tc.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("hvdc", "hvdc"); got != 1.0 {
		t.Fatalf("identical=%v", got)
	}
	if got := Similarity("HVDC ", "hvdc"); got != 1.0 {
		t.Fatalf("normalized identical=%v", got)
	}
	if got := Similarity("hvdc", "grm"); got != 0 {
		t.Fatalf("disjoint=%v", got)
	}
	// "abcba" and "bcbab" decompose to the same bigram multiset.
	if got := Similarity("abcba", "bcbab"); got >= 1.0 {
		t.Fatalf("bigram collision=%v", got)
	}

	pairs := [][2]string{
		{"hitachi", "hitachi energy"},
		{"samsung c&t", "samsung"},
		{"jptw-71", "grm-123"},
		{"", "das"},
		// rotations share a bigram multiset but are not the same string
		{"abcba", "bcbab"},
	}
	for _, p := range pairs {
		ab := Similarity(p[0], p[1])
		ba := Similarity(p[1], p[0])
		if ab != ba {
			t.Fatalf("asymmetric: %q/%q %v vs %v", p[0], p[1], ab, ba)
		}
		if ab < 0 || ab > 1 {
			t.Fatalf("out of range: %v", ab)
		}
		if ab == 1.0 && Normalize(p[0]) != Normalize(p[1]) {
			t.Fatalf("1.0 for non-identical %q/%q", p[0], p[1])
		}
	}
}

func TestFuzzyContains(t *testing.T) {
	vocab := []string{"Hitachi Energy", "Samsung C&T", "MOSB"}

	if !FuzzyContains("hitachi energy", vocab, 0.82) {
		t.Fatal("exact-normalized miss")
	}
	if !FuzzyContains("Hitachi Energi", vocab, 0.82) {
		t.Fatal("near match miss")
	}
	if FuzzyContains("totally different vendor", vocab, 0.82) {
		t.Fatal("false positive")
	}
	if FuzzyContains("hitachi", nil, 0.82) {
		t.Fatal("empty candidate set")
	}
}
