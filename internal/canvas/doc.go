// Package canvas keeps a drawing surface in step with an externally owned
// frame buffer.
//
// A [Canvas] listens to three notifications from a [Host] (data, width and
// height changed), pulls the current values on demand and maintains one
// non-premultiplied RGBA pixel buffer:
//
//   - the pixel buffer is reallocated only when the frame's shape changes
//   - bytes are copied on every data change
//   - redraws decode the pixel buffer off the caller's goroutine and draw
//     it scaled into the surface's display rectangle
//
// # Redraw ordering
//
// Every redraw takes the next value of a generation counter. A decode that
// completes after a newer redraw was requested is discarded, so slow
// decodes never paint stale pixels over fresher ones.
//
// # Example
//
//	model := widget.NewModel()
//	surf := surface.NewRaster(800, 600)
//	c, err := canvas.New(model, surf)
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//	model.SetFrame(frame)
//	c.Wait()
package canvas
