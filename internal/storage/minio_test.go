package storage

import (
	"testing"
	"time"
)

func TestObjectKey(t *testing.T) {
	at := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	got := ObjectKey("user-1", "rep-42", "comparatif.xlsx", at)
	want := "user-1/2026/03/rep-42/comparatif.xlsx"
	if got != want {
		t.Fatalf("ObjectKey = %q, want %q", got, want)
	}
}

func TestTrimBucket(t *testing.T) {
	orig := BucketName
	BucketName = "energy-reports"
	defer func() { BucketName = orig }()

	if got := trimBucket("energy-reports/u/2026/03/r/f.pdf"); got != "u/2026/03/r/f.pdf" {
		t.Fatalf("expected bucket prefix stripped, got %q", got)
	}
	if got := trimBucket("u/2026/03/r/f.pdf"); got != "u/2026/03/r/f.pdf" {
		t.Fatalf("expected bare key untouched, got %q", got)
	}
}

func TestGetFileExtension(t *testing.T) {
	cases := map[string]string{
		"application/pdf": ".pdf",
		"image/jpeg":      ".jpg",
		"image/png":       ".png",
		"image/webp":      ".webp",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": ".xlsx",
		"text/plain": ".bin",
	}
	for in, want := range cases {
		if got := GetFileExtension(in); got != want {
			t.Fatalf("GetFileExtension(%q) = %q, want %q", in, got, want)
		}
	}
}
