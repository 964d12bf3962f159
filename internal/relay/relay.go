// Package relay is the CORS relay deployed at the edge between the
// browser and the legacy HR backend. It forwards every request
// unchanged and stamps permissive CORS headers on the way back; the
// legacy backend itself sends none.
package relay

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Handler struct {
	target *url.URL
	client *http.Client
}

func New(target string) (*Handler, error) {
	parsed, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	return &Handler{
		target: parsed,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func corsHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS,PATCH")
	h.Set("Access-Control-Allow-Headers", "*")
	h.Set("Access-Control-Allow-Credentials", "true")
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		corsHeaders(w.Header())
		w.WriteHeader(http.StatusOK)
		return
	}

	outURL := *h.target
	outURL.Path = singleJoin(h.target.Path, r.URL.Path)
	outURL.RawQuery = r.URL.RawQuery

	out, err := http.NewRequestWithContext(r.Context(), r.Method, outURL.String(), r.Body)
	if err != nil {
		h.fail(w, err)
		return
	}
	out.Header = r.Header.Clone()
	out.Header.Del("Host")
	out.Host = h.target.Host

	resp, err := h.client.Do(out)
	if err != nil {
		h.fail(w, err)
		return
	}
	defer resp.Body.Close()

	for key, values := range resp.Header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	corsHeaders(w.Header())
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		slog.Warn("relay response copy failed", "err", err)
	}
}

// fail converts any forward failure into a well-formed 500 with the
// CORS headers attached, so the browser sees a readable error instead
// of an opaque network fault.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	slog.Warn("relay forward failed", "target", h.target.Host, "err", err)
	corsHeaders(w.Header())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "Proxy error",
		"details": err.Error(),
	})
}

func singleJoin(a, b string) string {
	switch {
	case strings.HasSuffix(a, "/") && strings.HasPrefix(b, "/"):
		return a + b[1:]
	case !strings.HasSuffix(a, "/") && !strings.HasPrefix(b, "/") && b != "":
		return a + "/" + b
	}
	return a + b
}
