package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"school-equipment-lending-system/models"
)

func TestFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() failed: %v", err)
	}

	if _, ok, err := f.Get("missing"); ok || err != nil {
		t.Errorf("Get(missing) = ok %v, err %v", ok, err)
	}
	if err := f.Set(KeyEquipments, []byte(`[{"id":1}]`)); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	got, ok, err := f.Get(KeyEquipments)
	if err != nil || !ok || string(got) != `[{"id":1}]` {
		t.Errorf("Get() = %q, ok %v, err %v", got, ok, err)
	}
	if err := f.Delete(KeyEquipments); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, ok, _ := f.Get(KeyEquipments); ok {
		t.Error("key survived Delete()")
	}
}

func TestFile_ReopenKeepsState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() failed: %v", err)
	}
	if err := f.Set(KeyUsers, []byte(`[{"id":7,"name":"x"}]`)); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := f.Set("otp:7", []byte(`{"code":"1234"}`)); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	g, err := OpenFile(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	got, ok, err := g.Get(KeyUsers)
	if err != nil || !ok || string(got) != `[{"id":7,"name":"x"}]` {
		t.Errorf("Get() after reopen = %q, ok %v, err %v", got, ok, err)
	}
	if _, ok, _ := g.Get("otp:7"); !ok {
		t.Error("otp record lost on reopen")
	}
}

func TestFile_RejectsInvalidJSON(t *testing.T) {
	f, err := OpenFile(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("OpenFile() failed: %v", err)
	}
	if err := f.Set("k", []byte(`{broken`)); !errors.Is(err, models.ErrStorage) {
		t.Errorf("Set(invalid) err = %v, want ErrStorage", err)
	}
}

func TestFile_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenFile(path); !errors.Is(err, models.ErrStorage) {
		t.Errorf("OpenFile(corrupt) err = %v, want ErrStorage", err)
	}
}

func TestMemory_CopiesValues(t *testing.T) {
	m := NewMemory()
	buf := []byte(`"v1"`)
	if err := m.Set("k", buf); err != nil {
		t.Fatal(err)
	}
	buf[1] = 'x'
	got, _, _ := m.Get("k")
	if string(got) != `"v1"` {
		t.Errorf("stored value aliased caller buffer: %q", got)
	}
	got[1] = 'y'
	again, _, _ := m.Get("k")
	if string(again) != `"v1"` {
		t.Errorf("returned value aliased store: %q", again)
	}
}
