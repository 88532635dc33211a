// Package vskia is a retained-mode scene graph of drawable shapes driven by
// a host UI reconciler, rasterized on the CPU and handed back as PNG.
//
// The host creates, reorders and removes nodes by id and sends untyped shape
// payloads; vskia validates them into a closed set of shapes and paints the
// tree depth-first, so later siblings paint over earlier ones.
//
// # Quick start
//
//	inst := vskia.NewInstance(0)
//	inst.ApplyShapePayload(0, []byte(`{"R": {"x": 0, "y": 0, "width": 100, "height": 100,
//		"color": "rgba(0, 0, 0, 255)", "style": "fill"}}`))
//	inst.AppendChild(1, 0)
//	inst.ApplyShapePayload(1, []byte(`{"C": {"cx": 50, "cy": 50, "r": 10,
//		"color": "rgba(255, 0, 0, 255)", "style": "fill"}}`))
//	uri, err := inst.ToDataURI() // "data:image/png;base64,..."
//
// # Scene graph
//
// Nodes live in a [Tree] arena keyed by [NodeID]. A node owns its children
// by id and holds no reference to its parent; removing a node frees its
// whole subtree. Append, insert-before and remove act on direct children
// only, while [Tree.FindByID] searches a whole subtree.
//
// # Shapes and colors
//
// [DecodeShape] accepts the R, C, RR, L and P variants. Colors go through
// [ResolveColor], which takes CSS rgb()/rgba(), hsl()/hsla(), hex and named
// colors. A structurally bad payload is an error; a payload whose color does
// not resolve is ignored by [Instance.ApplyShapePayload].
//
// # Rendering
//
// The root's Rect shape sets the canvas size and is not itself painted.
// [Renderer] walks the root's children pre-order, emits a [RenderCommand] per shaped node and submits them to a
// [Painter]; the default [Draw2DPainter] is backed by [draw2d].
//
// See package server for an HTTP boundary and package live for an
// Ebitengine preview window.
//
// [draw2d]: https://github.com/llgcode/draw2d
package vskia
