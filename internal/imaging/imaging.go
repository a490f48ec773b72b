// Package imaging converts HEIC stills to JPEG in-process.
package imaging

import (
	"bufio"
	"context"
	"image"
	"image/jpeg"
	"io"
	"os"
	"time"

	"github.com/gen2brain/heic"

	"github.com/backmassage/batchconv/internal/convert"
)

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 92

// DecodeFunc decodes the primary image of a container.
type DecodeFunc func(io.Reader) (image.Image, error)

// Converter decodes the primary frame of a HEIC file and writes it as JPEG
// beside the source. The source file is only read.
type Converter struct {
	Quality int
	Decode  DecodeFunc
}

// New returns a Converter using the built-in HEIC decoder.
func New(quality int) *Converter {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	return &Converter{Quality: quality, Decode: heic.Decode}
}

// Convert implements [convert.Converter].
func (c *Converter) Convert(ctx context.Context, item convert.WorkItem) convert.Outcome {
	started := time.Now()
	if err := ctx.Err(); err != nil {
		return convert.Failed(item, time.Time{}, convert.Errorf(convert.FailureCanceled, item.Source, "%v", err))
	}

	img, err := c.decode(item.Source)
	if err != nil {
		return convert.Failed(item, started, &convert.Error{Kind: convert.FailureDecode, Path: item.Source, Err: err})
	}

	n, err := writeJPEG(item.Target, img, c.quality())
	if err != nil {
		return convert.Failed(item, started, &convert.Error{Kind: convert.FailureWrite, Path: item.Target, Err: err})
	}
	return convert.Succeeded(item, started, n)
}

func (c *Converter) decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decode := c.Decode
	if decode == nil {
		decode = heic.Decode
	}
	return decode(bufio.NewReader(f))
}

func (c *Converter) quality() int {
	if c.Quality < 1 || c.Quality > 100 {
		return DefaultQuality
	}
	return c.Quality
}

// encodeJPEG writes img to w and reports how many bytes were written.
func encodeJPEG(w io.Writer, img image.Image, quality int) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)
	if err := jpeg.Encode(bw, img, &jpeg.Options{Quality: quality}); err != nil {
		return 0, err
	}
	if err := bw.Flush(); err != nil {
		return 0, err
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
