package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPClientAttachesToken(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"token123","token_type":"bearer","expires_in":3600}`))
	}))
	defer tokenSrv.Close()

	var got string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
	}))
	defer api.Close()

	c := Conf{ClientID: "id", ClientSecret: "secret", TokenURL: tokenSrv.URL}
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	resp, err := HTTPClient(context.Background(), c).Get(api.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if got != "Bearer token123" {
		t.Fatalf("unexpected Authorization header %q", got)
	}
}

func TestHTTPClientWithoutCredentials(t *testing.T) {
	if HTTPClient(context.Background(), Conf{}) != http.DefaultClient {
		t.Fatalf("expected default client")
	}
	if err := (Conf{ClientID: "id"}).Validate(); err == nil {
		t.Fatalf("expected error for missing secret")
	}
}

func TestRequireBearer(t *testing.T) {
	h := RequireBearer("tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	cases := []struct {
		header string
		want   int
	}{
		{"Bearer tok", http.StatusNoContent},
		{"Bearer nope", http.StatusUnauthorized},
		{"tok", http.StatusUnauthorized},
		{"", http.StatusUnauthorized},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if c.header != "" {
			req.Header.Set("Authorization", c.header)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != c.want {
			t.Errorf("header %q: status %d want %d", c.header, rr.Code, c.want)
		}
	}
	if !Authorized(httptest.NewRequest(http.MethodGet, "/", nil), "") {
		t.Fatalf("empty token must allow")
	}
}
