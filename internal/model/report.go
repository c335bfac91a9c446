package model

import "time"

// Report is the archived record of a generated MRI tumor detection report.
// The PDF bytes live in object storage under StoragePath; this row carries what the
// document was built from so it can be listed without fetching the file.
type Report struct {
	ID              string    `json:"id"`
	Filename        string    `json:"filename"`
	StoragePath     string    `json:"storage_path"`
	Size            int64     `json:"size"`
	ContentType     string    `json:"content_type"`
	PatientName     string    `json:"patient_name"`
	PatientEmail    string    `json:"patient_email"`
	Prediction      string    `json:"prediction"`
	Confidence      float64   `json:"confidence"`
	ImageEmbedded   bool      `json:"image_embedded"`
	TemplateVersion string    `json:"template_version"`
	CreatedAt       time.Time `json:"created_at"`
}
