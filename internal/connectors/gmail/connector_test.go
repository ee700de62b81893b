package gmail

import "testing"

func TestSearchQuery(t *testing.T) {
	c := &Connector{keywords: []string{"HVDC", "JPTW", "GRM", "PRL"}, lookbackDays: 14}
	want := "subject:(HVDC OR JPTW OR GRM OR PRL) newer_than:14d"
	if got := c.searchQuery(); got != want {
		t.Fatalf("searchQuery=%q want %q", got, want)
	}

	c = &Connector{}
	if got := c.searchQuery(); got != "" {
		t.Fatalf("expected empty query, got %q", got)
	}
}

func TestMessageFromRaw(t *testing.T) {
	raw := []byte("From: ops@example.com\r\n" +
		"Subject: RE: HVDC-ADOPT-HE-0476 shipment update\r\n" +
		"Message-ID: <abc@example.com>\r\n" +
		"Date: Sun, 30 Aug 2026 10:00:00 +0400\r\n" +
		"\r\n" +
		"body\r\n")

	msg, err := messageFromRaw("gm-1", raw)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Provider != "gmail" || msg.MessageID != "<abc@example.com>" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.Subject != "RE: HVDC-ADOPT-HE-0476 shipment update" {
		t.Fatalf("unexpected subject: %q", msg.Subject)
	}
	if msg.ReceivedAt != "2026-08-30T06:00:00Z" {
		t.Fatalf("unexpected receivedAt: %q", msg.ReceivedAt)
	}
}

func TestMessageFromRawFallsBackToGmailID(t *testing.T) {
	raw := []byte("From: ops@example.com\r\nSubject: x\r\n\r\nbody\r\n")
	msg, err := messageFromRaw("gm-2", raw)
	if err != nil {
		t.Fatal(err)
	}
	if msg.MessageID != "gm-2" {
		t.Fatalf("expected gmail id fallback, got %q", msg.MessageID)
	}
}
