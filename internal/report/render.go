package report

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

// ErrRenderingFailure marks a failure of the PDF backend. For the image it is recoverable:
// the report is produced without the scan.
var ErrRenderingFailure = errors.New("rendering failure")

const (
	fontFamily = "Helvetica"
	imageName  = "mri-scan"
	creator    = "mrireport"
)

// Rendered is a serialised report.
type Rendered struct {
	PDF           []byte
	ImageEmbedded bool
	// ImageErr is set when the document asked for an image that could not be embedded.
	ImageErr error
}

// Renderer serialises Documents to PDF.
type Renderer struct {
	now      func() time.Time
	log      *zap.Logger
	compress bool
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithClock fixes the document creation timestamp source.
func WithClock(now func() time.Time) RendererOption {
	return func(r *Renderer) { r.now = now }
}

// WithLogger sets the logger used for degraded renders.
func WithLogger(log *zap.Logger) RendererOption {
	return func(r *Renderer) { r.log = log }
}

// WithCompression toggles page stream compression.
func WithCompression(on bool) RendererOption {
	return func(r *Renderer) { r.compress = on }
}

// NewRenderer returns a Renderer writing compressed A4 pages.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{now: time.Now, log: zap.NewNop(), compress: true}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Render writes doc as a single-page PDF. An image that cannot be decoded or embedded is
// dropped and reported in Rendered.ImageErr; only a failure of the text page is an error.
func (r *Renderer) Render(doc Document) (*Rendered, error) {
	var (
		img    *preparedImage
		imgErr error
	)
	if in, ok := doc.ImageInstruction(); ok {
		p, err := prepareImage(in.Image)
		if err != nil {
			imgErr = err
		} else {
			img = &p
		}
	}

	out, err := r.write(doc, img)
	if err != nil && img != nil {
		imgErr = fmt.Errorf("%w: embed image: %v", ErrRenderingFailure, err)
		img = nil
		out, err = r.write(doc, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderingFailure, err)
	}

	if imgErr != nil {
		r.log.Warn("report_image_omitted",
			zap.String("component", "report"),
			zap.Error(imgErr),
		)
	}

	return &Rendered{PDF: out, ImageEmbedded: img != nil, ImageErr: imgErr}, nil
}

func (r *Renderer) write(doc Document, img *preparedImage) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetCreationDate(r.now())
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator(creator, true)
	pdf.AddPage()

	// Core fonts are cp1252; translate so accented names survive.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, in := range doc.Instructions {
		switch in.Kind {
		case KindText:
			pdf.SetFont(fontFamily, "", in.FontSize)
			pdf.Text(in.X, in.Y, tr(in.Text))
		case KindImage:
			if img == nil {
				continue
			}
			opt := fpdf.ImageOptions{ImageType: img.typ}
			pdf.RegisterImageOptionsReader(imageName, opt, bytes.NewReader(img.data))
			pdf.ImageOptions(imageName, in.X, in.Y, in.Width, in.Height, false, opt, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
