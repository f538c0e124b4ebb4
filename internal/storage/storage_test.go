package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stagedoor/london-acting-events/internal/event"
)

func TestNew_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	s, err := New("~/data/acting-events")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	want := filepath.Join(home, "data", "acting-events", SnapshotFile)
	if s.Path() != want {
		t.Errorf("Path() = %q, want %q", s.Path(), want)
	}
	if _, err := os.Stat(filepath.Dir(want)); err != nil {
		t.Errorf("data directory not created: %v", err)
	}
}

func TestLoadSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		content *string
		want    event.Snapshot
		wantErr bool
	}{
		{
			name: "missing file is empty",
			want: event.Snapshot{},
		},
		{
			name:    "valid snapshot",
			content: strPtr(`[{"title":"Panel Talk","start":"2026-11-14T19:00:00.000Z"}]`),
			want:    event.Snapshot{{Title: "Panel Talk", Start: "2026-11-14T19:00:00.000Z"}},
		},
		{
			name:    "empty array",
			content: strPtr(`[]`),
			want:    event.Snapshot{},
		},
		{
			name:    "null is empty",
			content: strPtr(`null`),
			want:    event.Snapshot{},
		},
		{
			name:    "malformed JSON is empty",
			content: strPtr(`[{"title":"Panel Talk",`),
			want:    event.Snapshot{},
		},
		{
			name:    "wrong shape is empty",
			content: strPtr(`{"events":{}}`),
			want:    event.Snapshot{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(t.TempDir())
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			if tt.content != nil {
				if err := os.WriteFile(s.Path(), []byte(*tt.content), 0644); err != nil {
					t.Fatal(err)
				}
			}

			got, err := s.LoadSnapshot()
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadSnapshot() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LoadSnapshot() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestLoadSnapshot_ReadError(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	// A directory where the file should be cannot be read.
	if err := os.Mkdir(s.Path(), 0755); err != nil {
		t.Fatal(err)
	}

	if _, err := s.LoadSnapshot(); err == nil {
		t.Error("LoadSnapshot() expected error, got nil")
	}
}

func TestSaveSnapshot_Overwrites(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	start := time.Date(2026, 11, 14, 19, 0, 0, 0, time.UTC)
	first := event.CreateSnapshot([]*event.Event{
		{Title: "Old Workshop", Start: start},
		{Title: "Panel Talk", Start: start},
	})
	second := event.CreateSnapshot([]*event.Event{
		{Title: "Panel Talk", Start: start},
		{Title: "New Showcase", Start: start.Add(24 * time.Hour)},
	})

	if err := s.SaveSnapshot(first); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}
	if err := s.SaveSnapshot(second); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}

	got, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot() error: %v", err)
	}
	if !reflect.DeepEqual(got, second) {
		t.Errorf("LoadSnapshot() = %v, want exactly %v", got, second)
	}

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("data directory has %d entries, want only the snapshot", len(entries))
	}
}

func TestSaveSnapshot_Format(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	snap := event.CreateSnapshot([]*event.Event{
		{Title: "Panel Talk", Start: time.Date(2026, 11, 14, 19, 0, 0, 0, time.UTC)},
	})
	if err := s.SaveSnapshot(snap); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}

	var raw []map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("snapshot is not a JSON array: %v", err)
	}
	want := []map[string]string{{"title": "Panel Talk", "start": "2026-11-14T19:00:00.000Z"}}
	if !reflect.DeepEqual(raw, want) {
		t.Errorf("snapshot = %v, want %v", raw, want)
	}
}

func TestSaveSnapshot_Nil(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := s.SaveSnapshot(nil); err != nil {
		t.Fatalf("SaveSnapshot(nil) error: %v", err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]\n" {
		t.Errorf("snapshot = %q, want empty array", data)
	}
}

func strPtr(s string) *string {
	return &s
}
