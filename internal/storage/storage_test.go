package storage

import (
	"os"
	"testing"

	"github.com/hailam/sonic/internal/engine"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOptionsRoundTrip(t *testing.T) {
	s := openTestStorage(t)

	t.Run("Defaults", func(t *testing.T) {
		opts, err := s.LoadOptions()
		if err != nil {
			t.Fatal(err)
		}
		if opts.Hash != engine.DefaultHashMB {
			t.Errorf("Hash = %d, want %d", opts.Hash, engine.DefaultHashMB)
		}
		if opts.Book != "" {
			t.Errorf("Book = %q, want empty", opts.Book)
		}
		if opts.Params["DeltaMargin"] != 850 {
			t.Errorf("DeltaMargin = %d", opts.Params["DeltaMargin"])
		}
	})

	t.Run("Saved", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Hash = 64
		opts.Book = "/tmp/book.bin"
		opts.Params = map[string]int{"LMRReduction": 2}
		if err := s.SaveOptions(opts); err != nil {
			t.Fatal(err)
		}
		if opts.UpdatedAt.IsZero() {
			t.Error("UpdatedAt not stamped")
		}

		got, err := s.LoadOptions()
		if err != nil {
			t.Fatal(err)
		}
		if got.Hash != 64 || got.Book != "/tmp/book.bin" {
			t.Errorf("got hash %d book %q", got.Hash, got.Book)
		}
		if got.Params["LMRReduction"] != 2 {
			t.Errorf("LMRReduction = %d, want 2", got.Params["LMRReduction"])
		}
		if got.Params["RFPBase"] != 250 {
			t.Errorf("unsaved parameter lost its default: RFPBase = %d", got.Params["RFPBase"])
		}
	})
}

func TestFirstLaunch(t *testing.T) {
	s := openTestStorage(t)

	first, err := s.IsFirstLaunch()
	if err != nil || !first {
		t.Fatalf("IsFirstLaunch = %v, %v; want true", first, err)
	}
	if err := s.MarkFirstLaunchComplete(); err != nil {
		t.Fatal(err)
	}
	if first, _ := s.IsFirstLaunch(); first {
		t.Error("still first launch after MarkFirstLaunchComplete")
	}
}

func TestOptionsApply(t *testing.T) {
	eng := engine.NewEngine(1)
	opts := DefaultOptions()
	opts.Hash = 2
	opts.Params["NullMoveReduction"] = 9
	opts.Params["Contempt"] = 5

	if err := opts.Apply(eng); err == nil {
		t.Error("unknown parameter not reported")
	}
	p := eng.Params()
	if v, _ := p.Get("NullMoveReduction"); v != 4 {
		t.Errorf("NullMoveReduction = %d, want clamped 4", v)
	}
	if v, _ := p.Get("AspirationWindow"); v != 20 {
		t.Errorf("AspirationWindow = %d, want 20", v)
	}
}

func TestOpenOnDisk(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.Hash = 128
	if err := s.SaveOptions(opts); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.LoadOptions()
	if err != nil {
		t.Fatal(err)
	}
	if got.Hash != 128 {
		t.Errorf("Hash after reopen = %d, want 128", got.Hash)
	}
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Error("GetDataDir returned empty path")
	}
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}

	dbDir, err := GetDatabaseDir(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dbDir); err != nil {
		t.Errorf("database directory: %v", err)
	}
}
