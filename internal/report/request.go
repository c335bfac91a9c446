package report

import (
	"errors"
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

var (
	// ErrMissingRequiredField aborts a build before anything is laid out.
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrInvalidField covers present but unusable values (unknown label, confidence out of range).
	ErrInvalidField = errors.New("invalid field")
)

// FieldError names the request field that failed validation.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Err.Error() }

func (e *FieldError) Unwrap() error { return e.Err }

func missing(field string) error { return &FieldError{Field: field, Err: ErrMissingRequiredField} }

func invalid(field, why string) error {
	return &FieldError{Field: field, Err: fmt.Errorf("%w: %s", ErrInvalidField, why)}
}

// User identifies the patient the report is issued for.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PredictionData is the classifier output. Confidence is a percentage in [0,100].
type PredictionData struct {
	Prediction string   `json:"prediction"`
	Confidence *float64 `json:"confidence"`
}

// Prediction wraps the inference service response.
type Prediction struct {
	Data *PredictionData `json:"data"`
}

// Image is the MRI scan to embed. Any of JPEG, PNG, GIF, BMP or TIFF.
type Image struct {
	Name string
	Data []byte
}

// Request carries everything a report is built from. Image may be nil.
type Request struct {
	User       *User       `json:"user"`
	Prediction *Prediction `json:"prediction"`
	Image      *Image      `json:"-"`
}

// fields is the validated, display-ready view of a Request.
type fields struct {
	name       string
	email      string
	label      string
	confidence float64
}

var textPolicy = bluemonday.StrictPolicy()

// cleanText strips markup and folds whitespace so every value fits on one text line.
func cleanText(s string) string {
	s = html.UnescapeString(textPolicy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

// printable reports whether s survives the PDF core fonts, which are cp1252 only.
func printable(s string) bool {
	_, err := charmap.Windows1252.NewEncoder().String(s)
	return err == nil
}

// Validate reports the first missing or invalid field.
func (r Request) Validate() error {
	_, err := r.fields()
	return err
}

func (r Request) fields() (fields, error) {
	var f fields

	if r.User == nil {
		return f, missing("user")
	}
	if f.name = cleanText(r.User.Name); f.name == "" {
		return f, missing("user.name")
	}
	if !printable(f.name) {
		return f, invalid("user.name", "contains characters the report font cannot print")
	}
	if f.email = cleanText(r.User.Email); f.email == "" {
		return f, missing("user.email")
	}
	if !printable(f.email) {
		return f, invalid("user.email", "contains characters the report font cannot print")
	}

	if r.Prediction == nil {
		return f, missing("prediction")
	}
	data := r.Prediction.Data
	if data == nil {
		return f, missing("prediction.data")
	}
	// Matched case-insensitively, printed as sent.
	if f.label = cleanText(data.Prediction); f.label == "" {
		return f, missing("prediction.data.prediction")
	}
	if !knownLabel(f.label) {
		return f, invalid("prediction.data.prediction", fmt.Sprintf("unknown label %q", f.label))
	}
	if data.Confidence == nil {
		return f, missing("prediction.data.confidence")
	}
	c := *data.Confidence
	if math.IsNaN(c) || c < 0 || c > 100 {
		return f, invalid("prediction.data.confidence", "must be between 0 and 100")
	}
	f.confidence = c

	return f, nil
}

func knownLabel(label string) bool {
	for _, l := range classLabels {
		if strings.EqualFold(l, label) {
			return true
		}
	}
	return false
}

// FormatConfidence renders a percentage with exactly two decimals, rounding half away from zero.
func FormatConfidence(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// RoundConfidence is the stored form of a confidence, matching what is printed.
func RoundConfidence(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
