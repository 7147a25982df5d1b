package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestList_FiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.jpg", "b")
	writeFile(t, dir, "a.PNG", "a")
	writeFile(t, dir, "c.jpeg", "c")
	writeFile(t, dir, "notes.txt", "x")
	writeFile(t, dir, "clip.mp4", "x")
	if err := os.Mkdir(filepath.Join(dir, "sub.jpg"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	entries, sig, err := List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if sig == "" {
		t.Fatalf("empty signature")
	}
	want := []string{"a.PNG", "b.jpg", "c.jpeg"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, w := range want {
		if entries[i].Name != w {
			t.Fatalf("entry %d: expected %s, got %s", i, w, entries[i].Name)
		}
	}
}

func TestList_MissingDirFails(t *testing.T) {
	if _, _, err := List(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestSignature_StableForIdenticalState(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jpg", "aaa")
	writeFile(t, dir, "b.jpg", "bbb")

	_, sig1, err := List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	_, sig2, err := List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if sig1 != sig2 {
		t.Fatalf("signature changed for identical directory state")
	}
}

func TestSignature_ChangesOnAddRemoveModify(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.jpg", "aaa")
	_, base, _ := List(dir)

	// Add
	p := writeFile(t, dir, "b.jpg", "bbb")
	_, sig, _ := List(dir)
	if sig == base {
		t.Fatalf("signature unchanged after adding a file")
	}
	base = sig

	// Modify size
	writeFile(t, dir, "b.jpg", "bbbb")
	_, sig, _ = List(dir)
	if sig == base {
		t.Fatalf("signature unchanged after resizing a file")
	}
	base = sig

	// Touch mtime only
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(p, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	_, sig, _ = List(dir)
	if sig == base {
		t.Fatalf("signature unchanged after mtime change")
	}
	base = sig

	// Remove
	if err := os.Remove(p); err != nil {
		t.Fatalf("remove: %v", err)
	}
	_, sig, _ = List(dir)
	if sig == base {
		t.Fatalf("signature unchanged after removing a file")
	}
}

func TestIsImageFile(t *testing.T) {
	cases := map[string]bool{
		"photo.jpg":  true,
		"photo.JPEG": true,
		"photo.png":  true,
		"photo.gif":  false,
		"photo":      false,
		"movie.mp4":  false,
	}
	for name, want := range cases {
		if got := IsImageFile(name); got != want {
			t.Fatalf("IsImageFile(%q) = %v, want %v", name, got, want)
		}
	}
}
