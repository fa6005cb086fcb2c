package cleaner

import (
	"strings"
	"testing"

	"clinrag/internal/port"
)

func TestClean_RemovesBoilerplate(t *testing.T) {
	c := New()

	pages := []port.Page{
		{Number: 1, Text: "Page 1 of 10\nMetformin is recommended as first-line therapy.\nAvailable at www.example.org\nAll rights reserved"},
	}

	out := c.Clean(pages)
	if len(out) != 1 {
		t.Fatalf("expected 1 page, got %d", len(out))
	}
	text := out[0].Text
	if !strings.Contains(text, "Metformin") {
		t.Errorf("expected content line to survive, got %q", text)
	}
	if strings.Contains(text, "rights reserved") || strings.Contains(text, "www.example.org") {
		t.Errorf("expected boilerplate removed, got %q", text)
	}
	if strings.Contains(text, "Page 1") {
		t.Errorf("expected page marker removed, got %q", text)
	}
}

func TestClean_StripsRepeatedHeaders(t *testing.T) {
	c := New()

	var pages []port.Page
	for i := 1; i <= 4; i++ {
		pages = append(pages, port.Page{
			Number: i,
			Text:   "Diabetes Guideline 2024 Edition\nUnique clinical content for this page number " + strings.Repeat("x", i),
		})
	}

	out := c.Clean(pages)
	for _, page := range out {
		if strings.Contains(page.Text, "Guideline 2024 Edition") {
			t.Errorf("expected running header stripped on page %d, got %q", page.Number, page.Text)
		}
		if !strings.Contains(page.Text, "Unique clinical content") {
			t.Errorf("expected body text kept on page %d, got %q", page.Number, page.Text)
		}
	}
}

func TestClean_DropsEmptyPages(t *testing.T) {
	c := New()

	pages := []port.Page{
		{Number: 1, Text: "   \n  \n"},
		{Number: 2, Text: "Warfarin dosing should be individualized per INR."},
	}

	out := c.Clean(pages)
	if len(out) != 1 {
		t.Fatalf("expected 1 page, got %d", len(out))
	}
	if out[0].Number != 2 {
		t.Errorf("expected page 2 kept, got page %d", out[0].Number)
	}
}

func TestFixStutteringHeader(t *testing.T) {
	got := fixStutteringHeader("Warfarin Warfarin is an anticoagulant")
	if got != "Warfarin is an anticoagulant" {
		t.Errorf("expected stutter removed, got %q", got)
	}

	unchanged := fixStutteringHeader("Warfarin is an anticoagulant")
	if unchanged != "Warfarin is an anticoagulant" {
		t.Errorf("expected text unchanged, got %q", unchanged)
	}
}
