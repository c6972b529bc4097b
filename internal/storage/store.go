package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/san-kum/framecanvas/internal/canvas"
	"github.com/san-kum/framecanvas/internal/export"
	"github.com/san-kum/framecanvas/internal/widget"
)

const (
	metadataFile = "metadata.json"
	frameFile    = "frame.bin"
	renderBase   = "render"
)

var ErrNotFound = errors.New("storage: snapshot not found")

// Store keeps canvas snapshots, one directory per snapshot.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type Metadata struct {
	ID        string       `json:"id"`
	Source    string       `json:"source"`
	Timestamp time.Time    `json:"timestamp"`
	Shape     canvas.Shape `json:"shape"`
	Width     string       `json:"width"`
	Height    string       `json:"height"`
	Render    string       `json:"render"`
	Stats     canvas.Stats `json:"stats"`
}

// Snapshot is everything needed to persist one canvas state.
type Snapshot struct {
	Source  string
	Frame   canvas.FrameBuffer
	Display canvas.DisplaySize
	Render  image.Image
	Format  export.Format
	Stats   canvas.Stats
}

// Save writes the metadata, the raw frame and the rendered surface and
// returns the new snapshot id.
func (s *Store) Save(snap Snapshot) (string, error) {
	if snap.Format == "" {
		snap.Format = export.WebP
	}

	now := time.Now()
	id := fmt.Sprintf("%s_%d", sanitize(snap.Source), now.UnixNano())
	dir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	if err := s.write(dir, id, now, snap); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return id, nil
}

func (s *Store) write(dir, id string, now time.Time, snap Snapshot) error {
	payload, err := widget.EncodeArray(snap.Frame)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, frameFile), payload, 0644); err != nil {
		return err
	}

	render := renderBase + snap.Format.Ext()
	if snap.Render != nil {
		if err := export.WriteFile(filepath.Join(dir, render), snap.Render); err != nil {
			return err
		}
	} else {
		render = ""
	}

	meta := Metadata{
		ID:        id,
		Source:    snap.Source,
		Timestamp: now,
		Shape:     snap.Frame.Shape,
		Width:     snap.Display.Width.String(),
		Height:    snap.Display.Height.String(),
		Render:    render,
		Stats:     snap.Stats,
	}

	f, err := os.Create(filepath.Join(dir, metadataFile))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// List returns all readable snapshots, oldest first.
func (s *Store) List() ([]Metadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Metadata{}, nil
		}
		return nil, err
	}

	snaps := make([]Metadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		snaps = append(snaps, *meta)
	}

	slices.SortFunc(snaps, func(a, b Metadata) int { return a.Timestamp.Compare(b.Timestamp) })
	return snaps, nil
}

func (s *Store) Load(id string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadFrame returns the raw frame stored with a snapshot.
func (s *Store) LoadFrame(id string) (canvas.FrameBuffer, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, frameFile))
	if err != nil {
		if os.IsNotExist(err) {
			return canvas.FrameBuffer{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return canvas.FrameBuffer{}, err
	}
	return widget.DecodeArray(data)
}

// RenderPath is the path of the rendered image, or "" when none was saved.
func (s *Store) RenderPath(meta *Metadata) string {
	if meta.Render == "" {
		return ""
	}
	return filepath.Join(s.baseDir, meta.ID, meta.Render)
}

func sanitize(name string) string {
	name = filepath.Base(name)
	if ext := filepath.Ext(name); ext != "" {
		name = name[:len(name)-len(ext)]
	}
	out := []rune(name)
	for i, r := range out {
		if !(r == '-' || r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			out[i] = '_'
		}
	}
	if len(out) == 0 {
		return "frame"
	}
	return string(out)
}
