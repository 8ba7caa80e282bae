package store

import (
	"testing"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}

	if _, ok := s.Get("missing"); ok {
		t.Error("Get on an empty store should report not found")
	}

	if err := s.Set("key", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	data, ok := s.Get("key")
	if !ok {
		t.Fatal("Get after Set reported not found")
	}
	if string(data) != `{"a":1}` {
		t.Errorf("Get returned %q", data)
	}
}

func TestLocalStoreNamespacedKeys(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}

	type payload struct {
		Weeks int `json:"weeks"`
	}

	if err := s.SetJSON("scrapes/20250825-060000", payload{Weeks: 4}); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}

	var got payload
	if !s.GetJSON("scrapes/20250825-060000", &got) {
		t.Fatal("GetJSON reported not found")
	}
	if got.Weeks != 4 {
		t.Errorf("Weeks = %d, want 4", got.Weeks)
	}
}

func TestLocalStoreGetJSONOnGarbage(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}
	if err := s.Set("bad", []byte("not json")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var v map[string]any
	if s.GetJSON("bad", &v) {
		t.Error("GetJSON should report failure on malformed JSON")
	}
}
