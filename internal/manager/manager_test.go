package manager

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRefreshMissingPath(t *testing.T) {
	m := newTestManager(t, &fakeRunner{})
	loaded, cur := m.Refresh(filepath.Join(t.TempDir(), "missing"))
	if loaded || cur != "" {
		t.Fatalf("missing dir: loaded=%v cur=%q", loaded, cur)
	}
}

func TestRefreshEmptyDir(t *testing.T) {
	m := newTestManager(t, &fakeRunner{})
	loaded, cur := m.Refresh(t.TempDir())
	if loaded || cur != "" {
		t.Fatalf("empty dir: loaded=%v cur=%q", loaded, cur)
	}
}

func TestRefreshNonEmptyDir(t *testing.T) {
	m := newTestManager(t, &fakeRunner{})
	d := t.TempDir()
	writeModelFiles(t, d, "model.gguf")
	loaded, cur := m.Refresh(d)
	if !loaded || cur != d {
		t.Fatalf("loaded=%v cur=%q", loaded, cur)
	}
}

func TestRefreshEmptyPathClears(t *testing.T) {
	m := newTestManager(t, &fakeRunner{})
	d := t.TempDir()
	writeModelFiles(t, d, "model.gguf")
	m.Refresh(d)
	loaded, cur := m.Refresh("")
	if loaded || cur != "" {
		t.Fatalf("loaded=%v cur=%q", loaded, cur)
	}
}

func TestModelStatusNotCachedAcrossCalls(t *testing.T) {
	m := newTestManager(t, &fakeRunner{})
	d := t.TempDir()
	writeModelFiles(t, d, "model.gguf")
	m.Refresh(d)

	st := m.ModelStatus()
	if !st.ModelLoaded || st.CurrentModel == nil || *st.CurrentModel != d {
		t.Fatalf("unexpected status: %+v", st)
	}

	// Empty the directory: the next query must observe it.
	if err := os.Remove(filepath.Join(d, "model.gguf")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	st = m.ModelStatus()
	if st.ModelLoaded || st.CurrentModel != nil {
		t.Fatalf("expected unloaded status, got %+v", st)
	}
}

func TestProgressReturnsCopy(t *testing.T) {
	m := newTestManager(t, &fakeRunner{})
	msg := "boom"
	m.mu.Lock()
	m.progress.Error = &msg
	m.progress.Progress = 10
	m.mu.Unlock()

	p := m.Progress()
	*p.Error = "mutated"
	if got := m.Progress(); *got.Error != "boom" {
		t.Fatalf("progress record aliased: %q", *got.Error)
	}
}

func TestListModels(t *testing.T) {
	m := newTestManager(t, &fakeRunner{})
	writeModelFiles(t, filepath.Join(m.cfg.ModelsDir, "m1"), "model.gguf")
	models, err := m.ListModels()
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 1 || models[0].ID != "m1" {
		t.Fatalf("unexpected models: %+v", models)
	}
}
