package widget

import (
	"bytes"
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/framecanvas/internal/canvas"
	"github.com/san-kum/framecanvas/internal/cssdim"
	"github.com/san-kum/framecanvas/internal/surface"
)

var _ = Describe("Model", func() {
	var m *Model

	BeforeEach(func() {
		m = NewModel()
	})

	It("starts with the widget defaults", func() {
		Expect(m.Get(canvas.FieldWidth)).To(Equal(DefaultWidth))
		Expect(m.Get(canvas.FieldHeight)).To(Equal(DefaultHeight))
		Expect(m.Get(canvas.FieldImageArray)).To(BeNil())
		Expect(m.Get("_view_name")).To(Equal(ViewName))
		Expect(m.State()).To(BeEmpty())
	})

	It("rejects unknown fields", func() {
		Expect(m.Set("depth", 3)).To(MatchError(ErrUnknownField))
		_, err := m.Read("depth")
		Expect(err).To(MatchError(ErrUnknownField))
	})

	It("fires change events only when the value changes", func() {
		calls := 0
		m.Subscribe("change:width", func() { calls++ })

		Expect(m.Set(canvas.FieldWidth, 300)).To(Succeed())
		Expect(m.Set(canvas.FieldWidth, 300)).To(Succeed())
		Expect(m.Set(canvas.FieldWidth, "300px")).To(Succeed())

		Expect(calls).To(Equal(2))
	})

	It("stops notifying after unsubscribe", func() {
		calls := 0
		unsub := m.Subscribe("change:height", func() { calls++ })
		Expect(m.Set(canvas.FieldHeight, 10)).To(Succeed())
		unsub()
		Expect(m.Set(canvas.FieldHeight, 20)).To(Succeed())
		Expect(calls).To(Equal(1))
	})

	It("compares frames by shape and content", func() {
		calls := 0
		m.Subscribe(canvas.EventDataChanged, func() { calls++ })
		fb := canvas.FrameBuffer{Data: []byte{1, 2, 3, 4}, Shape: canvas.Shape{1, 1, 4}}

		Expect(m.SetFrame(fb)).To(Succeed())
		Expect(m.SetFrame(fb)).To(Succeed())
		fb.Data[0] = 9
		Expect(m.SetFrame(fb)).To(Succeed())

		Expect(calls).To(Equal(2))
		got, ok := m.Frame()
		Expect(ok).To(BeTrue())
		Expect(got.Data).To(Equal([]byte{9, 2, 3, 4}))
	})

	It("copies frames on SetFrame", func() {
		data := []byte{1, 1, 1, 1}
		Expect(m.SetFrame(canvas.FrameBuffer{Data: data, Shape: canvas.Shape{1, 1}})).To(Succeed())
		data[0] = 0
		got, _ := m.Frame()
		Expect(got.Data[0]).To(Equal(byte(1)))
	})

	It("reports only non-default state", func() {
		Expect(m.Set(canvas.FieldHeight, "50%")).To(Succeed())
		Expect(m.State()).To(Equal(map[string]any{canvas.FieldHeight: "50%"}))
		Expect(m.Fields()).To(ContainElements(canvas.FieldWidth, canvas.FieldHeight, canvas.FieldImageArray))
	})
})

var _ = Describe("Array payload", func() {
	It("round-trips a frame", func() {
		fb := canvas.FrameBuffer{Data: bytes.Repeat([]byte{7}, 24), Shape: canvas.Shape{3, 2, 4}}
		p, err := EncodeArray(fb)
		Expect(err).NotTo(HaveOccurred())

		got, err := DecodeArray(p)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Shape).To(Equal(fb.Shape))
		Expect(got.Data).To(Equal(fb.Data))
	})

	It("rejects malformed payloads", func() {
		_, err := DecodeArray([]byte("nope"))
		Expect(err).To(MatchError(ErrBadArray))

		_, err = DecodeArray([]byte{'F', 'C', 'A', '1', 2, 0, 0, 0, 1})
		Expect(err).To(MatchError(ErrBadArray))

		_, err = EncodeArray(canvas.FrameBuffer{Shape: make(canvas.Shape, 9)})
		Expect(err).To(MatchError(ErrBadArray))
	})
})

var _ = Describe("Canvas bound to a model", func() {
	var (
		m    *Model
		r    *surface.Raster
		c    *canvas.Canvas
		errs []error
	)

	BeforeEach(func() {
		m = NewModel()
		r = surface.NewRaster(0, 0)
		errs = nil
		var err error
		c, err = canvas.New(m, r,
			canvas.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
			canvas.WithOnError(func(err error) { errs = append(errs, err) }))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(c.Close)
	})

	It("allocates on the first frame", func() {
		Expect(c.Shape()).To(Equal(canvas.Sentinel()))

		Expect(m.SetFrame(canvas.FrameBuffer{Data: bytes.Repeat([]byte{255}, 64), Shape: canvas.Shape{4, 4, 4}})).To(Succeed())
		c.Wait()

		pb := c.PixelBuffer()
		Expect(pb.Rect.Dx()).To(Equal(4))
		Expect(pb.Rect.Dy()).To(Equal(4))
		Expect(pb.Pix).To(Equal(bytes.Repeat([]byte{255}, 64)))
		Expect(c.Stats().Reallocations).To(BeEquivalentTo(1))
		Expect(r.Snapshot().Rect.Dx()).To(Equal(DefaultWidth))
	})

	It("surfaces shape mismatches and keeps the previous buffer", func() {
		Expect(m.SetFrame(canvas.FrameBuffer{Data: bytes.Repeat([]byte{255}, 64), Shape: canvas.Shape{4, 4, 4}})).To(Succeed())
		Expect(m.SetFrame(canvas.FrameBuffer{Data: bytes.Repeat([]byte{1}, 64), Shape: canvas.Shape{8, 4, 4}})).To(Succeed())
		c.Wait()

		Expect(errs).To(HaveLen(1))
		Expect(errs[0]).To(MatchError(canvas.ErrBufferShapeMismatch))
		Expect(c.Shape()).To(Equal(canvas.Shape{4, 4, 4}))
		Expect(c.PixelBuffer().Pix).To(Equal(bytes.Repeat([]byte{255}, 64)))
	})

	It("follows width and height changes", func() {
		Expect(m.Set(canvas.FieldWidth, "320px")).To(Succeed())
		Expect(m.Set(canvas.FieldHeight, 180)).To(Succeed())

		Expect(c.DisplaySize()).To(Equal(canvas.DisplaySize{
			Width:  cssdim.Pixels(320),
			Height: cssdim.Pixels(180),
		}))
		Expect(r.Bounds().Dx()).To(Equal(320))
		Expect(r.Bounds().Dy()).To(Equal(180))
	})
})
