package api

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestParseStrictDefaultsClosed(t *testing.T) {
	if !parseStrict("") {
		t.Fatal("omitted strict field must default to strict")
	}
	if !parseStrict("true") {
		t.Fatal("explicit true must stay strict")
	}
	if parseStrict("false") {
		t.Fatal("explicit false must opt out")
	}
}

func TestStrictFieldOmittedInForm(t *testing.T) {
	// A form without the strict field must still resolve to strict mode.
	form := url.Values{"type": {"electricite"}}
	req := httptest.NewRequest("POST", "/api/process-invoice", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if !parseStrict(req.FormValue("strict")) {
		t.Fatal("handler must pass Strict=true when the field is absent")
	}
	if req.FormValue("type") != "electricite" {
		t.Fatalf("unexpected form parsing: %q", req.FormValue("type"))
	}
}
