package report

// Report template constants.
//
// ModelName, ModelAccuracy and the class labels describe the classifier that produced the
// prediction. They are not derived from input. When the deployed model changes they must be
// updated together with TemplateVersion, otherwise the printed report misdescribes the model.
const (
	TemplateVersion = "vgg16-tl-1"
	ModelName       = "VGG16 Transfer Learning"
	ModelAccuracy   = "97.22%"

	Title       = "MRI Tumor Detection Report"
	Filename    = "MRI_Tumor_Report.pdf"
	ContentType = "application/pdf"
)

var classLabels = []string{"pituitary", "glioma", "meningioma", "notumor"}

// ClassLabels returns the labels the model can emit, in template order.
func ClassLabels() []string {
	out := make([]string, len(classLabels))
	copy(out, classLabels)
	return out
}

// Page geometry, in millimetres from the top-left corner of an A4 portrait page.
// Text coordinates are baselines.
const (
	marginX = 20.0

	titleY      = 20.0
	nameY       = 35.0
	emailY      = 45.0
	predictionY = 60.0
	confidenceY = 70.0
	modelY      = 85.0
	accuracyY   = 95.0
	labelsY     = 105.0

	imageY      = 115.0
	imageWidth  = 160.0
	imageHeight = 120.0

	titleFontSize = 16.0
	bodyFontSize  = 12.0
)

// TemplateInfo is the public description of the template, served alongside generated reports.
type TemplateInfo struct {
	Version     string   `json:"template_version"`
	Model       string   `json:"model"`
	Accuracy    string   `json:"accuracy"`
	ClassLabels []string `json:"class_labels"`
	Filename    string   `json:"filename"`
}

// Info describes the current template.
func Info() TemplateInfo {
	return TemplateInfo{
		Version:     TemplateVersion,
		Model:       ModelName,
		Accuracy:    ModelAccuracy,
		ClassLabels: ClassLabels(),
		Filename:    Filename,
	}
}
