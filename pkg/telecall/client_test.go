package telecall

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestWSEndpoint_SchemeFlip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		base string
		ws   string
		want string
	}{
		{name: "http to ws", base: "http://backend.local:8080", want: "ws://backend.local:8080/ws"},
		{name: "https to wss", base: "https://api.thesamodrei.com", want: "wss://api.thesamodrei.com/ws"},
		{name: "ws kept as is", base: "https://irrelevant", ws: "ws://stream.local", want: "ws://stream.local/ws"},
		{name: "trailing slash trimmed", base: "http://backend.local/", want: "ws://backend.local/ws"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := []ClientOption{WithBaseURL(tt.base)}
			if tt.ws != "" {
				opts = append(opts, WithWSBaseURL(tt.ws))
			}
			got, err := NewClient(opts...).wsEndpoint("/ws")
			if err != nil {
				t.Fatalf("wsEndpoint error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("wsEndpoint = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWSEndpoint_RejectsUnsupportedScheme(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(WithBaseURL("ftp://backend.local")).wsEndpoint("/ws"); err == nil {
		t.Fatal("ftp scheme accepted")
	}
}

func TestStatusError_Mapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code int
		want ErrorType
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusBadRequest, ErrInvalidRequest},
		{http.StatusUnprocessableEntity, ErrInvalidRequest},
		{http.StatusInternalServerError, ErrAPI},
		{http.StatusBadGateway, ErrAPI},
	}
	for _, tt := range tests {
		got := statusError(tt.code, []byte("boom"))
		if got.Type != tt.want {
			t.Errorf("statusError(%d).Type = %v, want %v", tt.code, got.Type, tt.want)
		}
		if got.StatusCode != tt.code || got.Message != "boom" {
			t.Errorf("statusError(%d) = %+v", tt.code, got)
		}
	}

	if got := statusError(http.StatusServiceUnavailable, nil); got.Message != http.StatusText(http.StatusServiceUnavailable) {
		t.Errorf("empty body message = %q", got.Message)
	}
}

func TestPostJSON_ErrorSurfaces(t *testing.T) {
	t.Parallel()

	srv := newTestBackend(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "no such call", http.StatusNotFound)
		})
	})

	client := NewClient(WithBaseURL(srv.URL))

	err := client.postJSON(context.Background(), "/missing", map[string]string{}, nil)
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Type != ErrNotFound {
		t.Fatalf("err = %v, want *Error with ErrNotFound", err)
	}

	err = NewClient(WithBaseURL("http://127.0.0.1:1")).postJSON(context.Background(), "/x", nil, nil)
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("err = %v, want *TransportError", err)
	}
}
