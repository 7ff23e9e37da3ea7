package ocr

import (
	"strings"
	"testing"
)

func TestNewTextExtractorDefaults(t *testing.T) {
	ex := NewTextExtractor("", 0)
	if ex.bin != "pdftotext" {
		t.Fatalf("expected default binary pdftotext, got %q", ex.bin)
	}
	if ex.minChars != DefaultMinTextChars {
		t.Fatalf("expected default threshold %d, got %d", DefaultMinTextChars, ex.minChars)
	}

	ex = NewTextExtractor("/opt/poppler/pdftotext", 120)
	if ex.bin != "/opt/poppler/pdftotext" || ex.minChars != 120 {
		t.Fatalf("explicit settings not kept: %+v", ex)
	}
}

func TestUsable(t *testing.T) {
	ex := NewTextExtractor("", 0)
	if ex.Usable("") {
		t.Fatal("empty text must not be usable")
	}
	if ex.Usable("   \n\t  ") {
		t.Fatal("whitespace-only text must not be usable")
	}
	if ex.Usable("Facture") {
		t.Fatal("a few characters must not be usable")
	}
	long := strings.Repeat("Facture d'électricité ", 10)
	if !ex.Usable(long) {
		t.Fatal("a substantial text layer must be usable")
	}
	// Surrounding whitespace must not count toward the threshold.
	padded := strings.Repeat(" ", 200) + "court"
	if ex.Usable(padded) {
		t.Fatal("padding must not make a short text usable")
	}
}
