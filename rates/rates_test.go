package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPProviderGetRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":"success","rates":{"USD":1,"EUR":0.92,"GBP":0.79,"INR":83.12}}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL)
	rates, err := p.GetRates(context.Background())
	if err != nil {
		t.Fatalf("GetRates returned error: %v", err)
	}

	if rates["EUR"] != 0.92 {
		t.Errorf("EUR rate = %v, want 0.92", rates["EUR"])
	}
	if rates["INR"] != 83.12 {
		t.Errorf("INR rate = %v, want 83.12", rates["INR"])
	}
}

func TestHTTPProviderGetRatesErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
	}{
		{"server error", http.StatusInternalServerError, "boom"},
		{"not found", http.StatusNotFound, ""},
		{"invalid json", http.StatusOK, "not json"},
		{"no rates", http.StatusOK, `{"rates":{}}`},
		{"missing rates key", http.StatusOK, `{"result":"success"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewHTTPProvider(srv.URL)
			if _, err := p.GetRates(context.Background()); err == nil {
				t.Error("expected an error, got nil")
			}
		})
	}
}

func TestNewHTTPProviderDefaultURL(t *testing.T) {
	p := NewHTTPProvider("")
	if p.url != DefaultURL {
		t.Errorf("url = %q, want %q", p.url, DefaultURL)
	}
}

func TestResolve(t *testing.T) {
	rates := map[string]float64{"EUR": 0.92, "BAD": -1, "ZERO": 0}

	tests := []struct {
		code string
		want float64
	}{
		{"EUR", 0.92},
		{"JPY", 1.0},  // missing
		{"BAD", 1.0},  // negative
		{"ZERO", 1.0}, // not positive
	}
	for _, tt := range tests {
		if got := Resolve(rates, tt.code); got != tt.want {
			t.Errorf("Resolve(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestStaticProvider(t *testing.T) {
	p := Static{"EUR": 0.9}
	rates, err := p.GetRates(context.Background())
	if err != nil {
		t.Fatalf("Static.GetRates returned error: %v", err)
	}
	if rates["EUR"] != 0.9 {
		t.Errorf("EUR rate = %v, want 0.9", rates["EUR"])
	}
}
