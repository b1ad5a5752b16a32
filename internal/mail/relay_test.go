package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRelayClient_SendCode(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "key-123" {
			t.Errorf("Authorization = %q, want key-123", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewRelayClient("key-123", srv.URL, "noreply@keai.example")
	if err := c.SendCode(context.Background(), "op@example.com", "123456"); err != nil {
		t.Fatalf("SendCode: %v", err)
	}
	if got["to"] != "op@example.com" {
		t.Errorf("to = %q, want op@example.com", got["to"])
	}
	if !strings.Contains(got["text"], "123456") {
		t.Error("body should contain the code")
	}
}

func TestRelayClient_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewRelayClient("key-123", srv.URL, "")
	if err := c.SendCode(context.Background(), "op@example.com", "123456"); err == nil {
		t.Error("SendCode should fail on non-2xx status")
	}
}

func TestRelayClient_MissingConfig(t *testing.T) {
	c := NewRelayClient("", "http://relay.invalid", "")
	if err := c.SendCode(context.Background(), "op@example.com", "123456"); err == nil {
		t.Error("SendCode without API key should fail")
	}
	c = NewRelayClient("key", "", "")
	if err := c.SendCode(context.Background(), "op@example.com", "123456"); err == nil {
		t.Error("SendCode without base URL should fail")
	}
}
