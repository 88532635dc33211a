package vskia

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
)

// DataURIPrefix starts every URI returned by DataURI.
const DataURIPrefix = "data:image/png;base64,"

// EncodePNG writes img to w as PNG. An empty image writes nothing, since
// PNG has no representation for a zero-sized image.
func EncodePNG(w io.Writer, img image.Image) error {
	if img.Bounds().Empty() {
		return nil
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// DataURI encodes img as a base64 PNG data URI. An empty image yields the
// bare prefix with an empty payload.
func DataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return "", err
	}
	return DataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
