package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestItoa(t *testing.T) {
	cases := map[int]string{0: "0", 200: "200", 404: "404", 500: "500"}
	for n, want := range cases {
		if got := itoa(n); got != want {
			t.Fatalf("itoa(%d)=%q want %q", n, got, want)
		}
	}
}

func TestStatusRecorderCapturesCode(t *testing.T) {
	w := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: w, status: 200}
	sr.WriteHeader(http.StatusTeapot)
	if sr.status != http.StatusTeapot || w.Code != http.StatusTeapot {
		t.Fatalf("status=%d recorded=%d", sr.status, w.Code)
	}
}

func TestRoutePatternOrPathFallsBack(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/some/path", nil)
	if got := routePatternOrPath(req); got != "/some/path" {
		t.Fatalf("got %q", got)
	}
}

func TestMetricsMiddlewarePassesThrough(t *testing.T) {
	h := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d", w.Code)
	}
}
