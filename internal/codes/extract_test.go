package codes

import (
	"reflect"
	"testing"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	reg, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	return NewEngine(reg)
}

func TestExtractCaseCodes(t *testing.T) {
	e := newEngine(t)

	cases := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "adopt in forwarded subject",
			text: "Fwd: HVDC-ADOPT-HE-0476 - Docs",
			want: []string{"HVDC-ADOPT-HE-0476"},
		},
		{
			name: "adopt lowercase source",
			text: "re: hvdc-adopt-he-0476 status",
			want: []string{"HVDC-ADOPT-HE-0476"},
		},
		{
			name: "generic project code",
			text: "HVDC-AGI-SCT-0134 Project Update",
			want: []string{"HVDC-AGI-SCT-0134"},
		},
		{
			name: "paren short code",
			text: "RE: [Docu.Review] PRL-ZAK-031-A(HE-0504) Shims,Spare parts / AIR FREIGHT / GOT50300314",
			want: []string{"HVDC-ADOPT-HE-0504", "PRL-ZAK-031-A(HE-0504)"},
		},
		{
			name: "paren multi comma separated",
			text: "(HE-0427, HE-0428)",
			want: []string{"HVDC-ADOPT-HE-0427", "HVDC-ADOPT-HE-0428"},
		},
		{
			name: "prl keeps raw and expanded",
			text: "PRL-O-046-O4(HE-0486) - status",
			want: []string{"HVDC-ADOPT-HE-0486", "PRL-O-046-O4(HE-0486)"},
		},
		{
			name: "prl sub number",
			text: "RE: (URGENT) PRL-D-011-T-(HE-0499-3) // Delivery Request",
			want: []string{"HVDC-ADOPT-HE-0499-3", "PRL-D-011-T-(HE-0499-3)"},
		},
		{
			name: "jptw grm pair",
			text: "… JPTW-71 / GRM-123 …",
			want: []string{"JPTW-71/GRM-123"},
		},
		{
			name: "tagged composite plus pair",
			text: "[HVDC-AGI] Cargo readiness JPTW-71 / GRM-123",
			want: []string{"HVDC-AGI-JPTW71-GRM123", "JPTW-71/GRM-123"},
		},
		{
			name: "duplicate adopt collapses",
			text: "HVDC-ADOPT-SCT-0136 HVDC-ADOPT-SCT-0136 / GRM-123",
			want: []string{"HVDC-ADOPT-SCT-0136"},
		},
		{
			name: "empty input",
			text: "",
			want: []string{},
		},
		{
			name: "no identifiers",
			text: "Weekly progress meeting minutes",
			want: []string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := e.ExtractCaseCodes(tc.text)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestExtractCaseCodesTrailing(t *testing.T) {
	e := newEngine(t)
	got := e.ExtractCaseCodes("Shipment update: HVDC-AGI-JPTW71-GRM65(760TN) arrived")
	found := false
	for _, c := range got {
		if c == "HVDC-AGI-JPTW71-GRM65" {
			found = true
		}
		if c != "" && c[len(c)-1] == ')' && c[0] != 'P' {
			t.Fatalf("unstripped parenthetical in %q", c)
		}
	}
	if !found {
		t.Fatalf("trailing code missing: %v", got)
	}
}

func TestExtractCaseCodesDeterministic(t *testing.T) {
	e := newEngine(t)
	text := "RE: HVDC-ADOPT-HE-0476 - JPTW-71 / GRM-123 (HE-0427, HE-0428) PRL-O-046-O4(HE-0486)"
	first := e.ExtractCaseCodes(text)
	for i := 0; i < 50; i++ {
		again := e.ExtractCaseCodes(text)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %v vs %v", i, first, again)
		}
	}

	seen := map[string]struct{}{}
	for _, c := range first {
		key := toUpperASCII(c)
		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate %q in %v", c, first)
		}
		seen[key] = struct{}{}
	}
}

func TestExtractOrderFollowsRegistration(t *testing.T) {
	e := newEngine(t)
	matches := e.Extract("PRL-O-046-O4(HE-0486) HVDC-ADOPT-HE-0476")
	if len(matches) < 2 {
		t.Fatalf("matches=%v", matches)
	}
	// hvdc_adopt is registered before paren_derived and prl
	if matches[0].Rule != "hvdc_adopt" {
		t.Fatalf("first rule=%s", matches[0].Rule)
	}
}

func TestExtractSupplements(t *testing.T) {
	e := newEngine(t)

	pos := e.ExtractPONumbers("PRL-O-046-O4(HE-0486) | PO 5001005009 | AGI")
	if !reflect.DeepEqual(pos, []string{"PO-5001005009"}) {
		t.Fatalf("pos=%v", pos)
	}

	sites := e.ExtractSites("Delivery to DAS station then AGI")
	if !reflect.DeepEqual(sites, []string{"DAS", "AGI"}) {
		t.Fatalf("sites=%v", sites)
	}

	phases := e.ExtractPhases("STAGE-2 readiness, PH1 closed")
	if !reflect.DeepEqual(phases, []string{"PHASE-2", "PHASE-1"}) {
		t.Fatalf("phases=%v", phases)
	}
}

func TestDedupeCodes(t *testing.T) {
	got := DedupeCodes([]string{"HVDC-ADOPT-HE-0476", "hvdc-adopt-he-0476", "GRM-1", "HVDC-ADOPT-HE-0476"})
	want := []string{"HVDC-ADOPT-HE-0476", "GRM-1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}
