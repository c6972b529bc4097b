// Package widget implements the data model side of the image canvas
// widget: a small attribute store with change notifications that a
// canvas.Canvas subscribes to.
package widget

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/san-kum/framecanvas/internal/canvas"
)

const (
	ModelName = "ImageCanvasModel"
	ViewName  = "ImageCanvasView"
	Module    = "framecanvas"
	Version   = "0.1.0"

	DefaultWidth  = 256
	DefaultHeight = 256
)

var ErrUnknownField = errors.New("widget: unknown field")

// Defaults returns the initial attribute set. Only values that differ from
// these are reported by State.
func Defaults() map[string]any {
	return map[string]any{
		"_model_name":           ModelName,
		"_view_name":            ViewName,
		"_model_module":         Module,
		"_view_module":          Module,
		"_model_module_version": Version,
		"_view_module_version":  Version,
		canvas.FieldImageArray:  nil,
		canvas.FieldWidth:       DefaultWidth,
		canvas.FieldHeight:      DefaultHeight,
	}
}

// Model is safe for concurrent use. Listeners run synchronously on the
// goroutine that called Set, after the model lock is released.
type Model struct {
	mu        sync.Mutex
	attrs     map[string]any
	listeners map[string]map[int]func()
	nextID    int
}

var _ canvas.Host = (*Model)(nil)

func NewModel() *Model {
	return &Model{
		attrs:     Defaults(),
		listeners: make(map[string]map[int]func()),
	}
}

// Subscribe registers fn for an event such as "change:width". The returned
// function removes it.
func (m *Model) Subscribe(event string, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	if m.listeners[event] == nil {
		m.listeners[event] = make(map[int]func())
	}
	m.listeners[event][id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners[event], id)
	}
}

func (m *Model) Read(field string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.attrs[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return v, nil
}

func (m *Model) Get(field string) any {
	v, _ := m.Read(field)
	return v
}

// Set stores v and fires "change:<field>" when the value differs from the
// current one.
func (m *Model) Set(field string, v any) error {
	m.mu.Lock()
	old, ok := m.attrs[field]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if equal(old, v) {
		m.mu.Unlock()
		return nil
	}
	m.attrs[field] = v
	fns := m.listenersLocked("change:" + field)
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return nil
}

// SetFrame stores a copy of fb as the image array.
func (m *Model) SetFrame(fb canvas.FrameBuffer) error {
	return m.Set(canvas.FieldImageArray, canvas.FrameBuffer{
		Data:  bytes.Clone(fb.Data),
		Shape: fb.Shape.Clone(),
	})
}

func (m *Model) Frame() (canvas.FrameBuffer, bool) {
	fb, ok := m.Get(canvas.FieldImageArray).(canvas.FrameBuffer)
	return fb, ok
}

// State returns the attributes whose values differ from Defaults.
func (m *Model) State() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	defaults := Defaults()
	out := make(map[string]any)
	for k, v := range m.attrs {
		if !equal(defaults[k], v) {
			out[k] = v
		}
	}
	return out
}

// Fields lists attribute names in sorted order.
func (m *Model) Fields() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.attrs))
}

func (m *Model) listenersLocked(event string) []func() {
	ids := slices.Sorted(maps.Keys(m.listeners[event]))
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.listeners[event][id])
	}
	return fns
}

func equal(a, b any) bool {
	fa, okA := a.(canvas.FrameBuffer)
	fb, okB := b.(canvas.FrameBuffer)
	if okA && okB {
		return fa.Shape.Equal(fb.Shape) && bytes.Equal(fa.Data, fb.Data)
	}
	return reflect.DeepEqual(a, b)
}
