package cache

import (
	"path/filepath"
	"testing"
)

func TestEmbedCache_RoundTrip(t *testing.T) {
	c, err := NewEmbedCache(filepath.Join(t.TempDir(), "embed.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	vec := []float32{0.1, -0.5, 2.25, 0}
	if err := c.Put("mock", "insulin safety", vec); err != nil {
		t.Fatal(err)
	}

	got, ok := c.Get("mock", "insulin safety")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got) != len(vec) {
		t.Fatalf("expected %d dims, got %d", len(vec), len(got))
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("dim %d: expected %f, got %f", i, vec[i], got[i])
		}
	}
}

func TestEmbedCache_MissOnDifferentModel(t *testing.T) {
	c, err := NewEmbedCache(filepath.Join(t.TempDir(), "embed.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Put("model-a", "some text", []float32{1}); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get("model-b", "some text"); ok {
		t.Error("expected miss for a different model")
	}
	if _, ok := c.Get("model-a", "other text"); ok {
		t.Error("expected miss for different text")
	}
}
