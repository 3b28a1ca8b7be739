package snapshot

import "testing"

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}

	t.Run("absent key", func(t *testing.T) {
		if _, ok := store.Read("missing"); ok {
			t.Error("expected miss for absent key")
		}
	})

	t.Run("write then read", func(t *testing.T) {
		store.Write("k", `{"state":{}}`)
		v, ok := store.Read("k")
		if !ok || v != `{"state":{}}` {
			t.Errorf("got (%q, %v)", v, ok)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		store.Write("k", "first")
		store.Write("k", "second")
		v, _ := store.Read("k")
		if v != "second" {
			t.Errorf("got %q, want second", v)
		}
	})

	t.Run("clear", func(t *testing.T) {
		store.Write("k", "v")
		store.Clear("k")
		if _, ok := store.Read("k"); ok {
			t.Error("expected miss after clear")
		}
		// Clearing again must not panic or fail
		store.Clear("k")
	})
}
