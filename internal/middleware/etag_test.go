package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

var dashboardStub = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"cache":[],"miss_rate":0.5}`))
})

func etagGet(t *testing.T, h http.Handler, ifNoneMatch string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard?user=u1", nil)
	if ifNoneMatch != "" {
		req.Header.Set("If-None-Match", ifNoneMatch)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestETagStampedOnSuccess(t *testing.T) {
	rr := etagGet(t, ETag(dashboardStub), "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if rr.Header().Get("ETag") == "" {
		t.Error("ETag header missing")
	}
	if got := rr.Header().Get("Cache-Control"); got != "private, no-cache" {
		t.Errorf("Cache-Control = %q, want private, no-cache", got)
	}
	if rr.Body.Len() == 0 {
		t.Error("body missing on first response")
	}
}

func TestETagRoundTrip(t *testing.T) {
	h := ETag(dashboardStub)

	first := etagGet(t, h, "")
	tag := first.Header().Get("ETag")
	if tag == "" {
		t.Fatal("no ETag on first response")
	}

	second := etagGet(t, h, tag)
	if second.Code != http.StatusNotModified {
		t.Errorf("revalidation status = %d, want 304", second.Code)
	}
	if second.Body.Len() != 0 {
		t.Error("304 response carried a body")
	}

	// A weak validator for the same tag still matches.
	weak := etagGet(t, h, "W/"+tag)
	if weak.Code != http.StatusNotModified {
		t.Errorf("weak validator status = %d, want 304", weak.Code)
	}
}

func TestETagStaleValidatorServesBody(t *testing.T) {
	rr := etagGet(t, ETag(dashboardStub), `"0000deadbeef"`)
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for stale validator", rr.Code)
	}
	if rr.Body.Len() == 0 {
		t.Error("body missing for stale validator")
	}
}

func TestETagSkipsErrorsAndWrites(t *testing.T) {
	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("missing"))
	})
	rr := etagGet(t, ETag(notFound), "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 passed through", rr.Code)
	}
	if rr.Header().Get("ETag") != "" {
		t.Error("error response must not carry an ETag")
	}

	post := httptest.NewRequest(http.MethodPost, "/api/set_confidence", nil)
	rrPost := httptest.NewRecorder()
	ETag(dashboardStub).ServeHTTP(rrPost, post)
	if rrPost.Header().Get("ETag") != "" {
		t.Error("non-GET response must not carry an ETag")
	}
}
