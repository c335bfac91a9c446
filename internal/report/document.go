package report

import "strings"

// Kind tags a drawing instruction.
type Kind int

const (
	KindText Kind = iota + 1
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// Instruction is one positioned element of the page.
type Instruction struct {
	Kind Kind
	X, Y float64

	// text
	FontSize float64
	Text     string

	// image
	Width, Height float64
	Image         *Image
}

// Document is the single-page layout of a report, independent of any output format.
type Document struct {
	Title        string
	Filename     string
	Instructions []Instruction
}

// Lines returns the text content in page order.
func (d Document) Lines() []string {
	var out []string
	for _, in := range d.Instructions {
		if in.Kind == KindText {
			out = append(out, in.Text)
		}
	}
	return out
}

// ImageInstruction returns the embedded image element, if the document has one.
func (d Document) ImageInstruction() (Instruction, bool) {
	for _, in := range d.Instructions {
		if in.Kind == KindImage {
			return in, true
		}
	}
	return Instruction{}, false
}

// Fields summarises the validated request values a document was built from.
type Fields struct {
	Name       string
	Email      string
	Prediction string
	Confidence float64
}

// Build lays a validated request out on the fixed template. It never mutates req and
// returns a *FieldError wrapping ErrMissingRequiredField or ErrInvalidField on bad input.
func Build(req Request) (Document, Fields, error) {
	f, err := req.fields()
	if err != nil {
		return Document{}, Fields{}, err
	}

	text := func(y, size float64, s string) Instruction {
		return Instruction{Kind: KindText, X: marginX, Y: y, FontSize: size, Text: s}
	}

	ins := []Instruction{
		text(titleY, titleFontSize, Title),
		text(nameY, bodyFontSize, "Name: "+f.name),
		text(emailY, bodyFontSize, "Email: "+f.email),
		text(predictionY, bodyFontSize, "Prediction: "+f.label),
		text(confidenceY, bodyFontSize, "Confidence: "+FormatConfidence(f.confidence)+"%"),
		text(modelY, bodyFontSize, "Model: "+ModelName),
		text(accuracyY, bodyFontSize, "Accuracy: "+ModelAccuracy),
		text(labelsY, bodyFontSize, "Class Labels: "+strings.Join(classLabels, ", ")),
	}

	if req.Image != nil && len(req.Image.Data) > 0 {
		ins = append(ins, Instruction{
			Kind:   KindImage,
			X:      marginX,
			Y:      imageY,
			Width:  imageWidth,
			Height: imageHeight,
			Image:  req.Image,
		})
	}

	doc := Document{Title: Title, Filename: Filename, Instructions: ins}
	return doc, Fields{Name: f.name, Email: f.email, Prediction: f.label, Confidence: f.confidence}, nil
}
