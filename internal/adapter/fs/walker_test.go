package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWalkClassifiesBySpecialtyAndPublisher(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "cardiology", "aha", "af-2026.pdf"))
	writeFile(t, filepath.Join(root, "cardiology", "esc", "hf-2025.pdf"))
	writeFile(t, filepath.Join(root, "pulmonology", "copd.txt"))
	writeFile(t, filepath.Join(root, "readme.md"))
	writeFile(t, filepath.Join(root, "cardiology", "aha", "notes.docx"))

	w := NewCorpusWalker(nil, nil)
	files, err := w.Walk(root)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(files) != 4 {
		t.Fatalf("got %d files, want 4: %+v", len(files), files)
	}

	byName := make(map[string]CorpusFile)
	for _, f := range files {
		byName[filepath.Base(f.Path)] = f
	}

	af := byName["af-2026.pdf"]
	if af.Specialty != "cardiology" || af.Publisher != "aha" {
		t.Errorf("af-2026.pdf classified as %q/%q", af.Specialty, af.Publisher)
	}
	copd := byName["copd.txt"]
	if copd.Specialty != "pulmonology" || copd.Publisher != "" {
		t.Errorf("copd.txt classified as %q/%q", copd.Specialty, copd.Publisher)
	}
	readme := byName["readme.md"]
	if readme.Specialty != "" || readme.Publisher != "" {
		t.Errorf("readme.md classified as %q/%q", readme.Specialty, readme.Publisher)
	}
}

func TestWalkExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "cardiology", "aha", "keep.pdf"))
	writeFile(t, filepath.Join(root, "archive", "old", "skip.pdf"))

	w := NewCorpusWalker([]string{"**/*.pdf"}, []string{"archive/**"})
	files, err := w.Walk(root)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0].Path) != "keep.pdf" {
		t.Fatalf("got %+v, want only keep.pdf", files)
	}
}
