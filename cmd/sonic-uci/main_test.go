package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/sonic/internal/engine"
	"github.com/hailam/sonic/internal/storage"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	saved := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = saved })
	return &buf
}

func TestRestoreOptions(t *testing.T) {
	store, err := storage.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	saved := storage.DefaultOptions()
	saved.Hash = 64
	if err := store.SaveOptions(saved); err != nil {
		t.Fatal(err)
	}

	captureLog(t)
	if opts := restoreOptions(store); opts.Hash != 64 {
		t.Errorf("Hash = %d, want the saved 64", opts.Hash)
	}
	if first, err := store.IsFirstLaunch(); err != nil || first {
		t.Errorf("IsFirstLaunch = %v, %v after the first run", first, err)
	}
}

func TestRestoreOptionsLogsStorageErrors(t *testing.T) {
	store, err := storage.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	store.Close()

	buf := captureLog(t)
	opts := restoreOptions(store)
	if opts.Hash != engine.DefaultHashMB {
		t.Errorf("Hash = %d, want the default", opts.Hash)
	}
	for _, msg := range []string{"could not load saved options", "could not read first-launch marker"} {
		if !strings.Contains(buf.String(), msg) {
			t.Errorf("log %q is missing %q", buf.String(), msg)
		}
	}
}
