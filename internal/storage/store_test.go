package storage

import (
	"bytes"
	"errors"
	"image"
	"os"
	"testing"

	"github.com/san-kum/framecanvas/internal/canvas"
	"github.com/san-kum/framecanvas/internal/cssdim"
	"github.com/san-kum/framecanvas/internal/export"
)

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	frame := canvas.FrameBuffer{Data: bytes.Repeat([]byte{200}, 16), Shape: canvas.Shape{2, 2, 4}}
	id, err := st.Save(Snapshot{
		Source:  "data/field.png",
		Frame:   frame,
		Display: canvas.DisplaySize{Width: cssdim.Pixels(256), Height: cssdim.Percentage(50)},
		Render:  image.NewRGBA(image.Rect(0, 0, 8, 8)),
		Format:  export.PNG,
		Stats:   canvas.Stats{Uploads: 3, Reallocations: 1},
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty id")
	}

	meta, err := st.Load(id)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Source != "data/field.png" {
		t.Errorf("expected source data/field.png, got %s", meta.Source)
	}
	if !meta.Shape.Equal(frame.Shape) {
		t.Errorf("expected shape %v, got %v", frame.Shape, meta.Shape)
	}
	if meta.Width != "256px" || meta.Height != "50%" {
		t.Errorf("unexpected display %s x %s", meta.Width, meta.Height)
	}
	if meta.Stats.Uploads != 3 {
		t.Errorf("expected 3 uploads, got %d", meta.Stats.Uploads)
	}

	got, err := st.LoadFrame(id)
	if err != nil {
		t.Fatalf("load frame failed: %v", err)
	}
	if !bytes.Equal(got.Data, frame.Data) || !got.Shape.Equal(frame.Shape) {
		t.Error("frame changed in storage")
	}

	if _, err := os.Stat(st.RenderPath(meta)); err != nil {
		t.Errorf("expected render file: %v", err)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Fatalf("expected empty list, got %v, %v", runs, err)
	}

	for _, src := range []string{"a", "b"} {
		if _, err := st.Save(Snapshot{Source: src, Frame: canvas.FrameBuffer{Shape: canvas.Shape{0, 0}}}); err != nil {
			t.Fatal(err)
		}
	}

	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(runs))
	}
	if runs[0].Source != "a" || runs[1].Source != "b" {
		t.Errorf("expected oldest first, got %s, %s", runs[0].Source, runs[1].Source)
	}
	if runs[0].Render != "" {
		t.Errorf("expected no render, got %s", runs[0].Render)
	}
}

func TestStoreNotFound(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := st.LoadFrame("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"data/field.png": "field",
		"wave":           "wave",
		"a b:c.tga":      "a_b_c",
		"":               "frame",
	}
	for in, want := range tests {
		if got := sanitize(in); got != want {
			t.Errorf("sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStoreSaveFailureLeavesNoSnapshot(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	_, err := st.Save(Snapshot{
		Source: "bad",
		Frame:  canvas.FrameBuffer{Data: bytes.Repeat([]byte{1}, 16), Shape: canvas.Shape{2, 2, 4}},
		Render: image.NewRGBA(image.Rect(0, 0, 2, 2)),
		Format: export.Format("bmp"),
	})
	if !errors.Is(err, export.ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected failed save to be removed, found %d entries", len(entries))
	}
}
