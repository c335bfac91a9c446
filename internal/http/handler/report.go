package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"mrireport/internal/report"
	"mrireport/internal/service"
)

const (
	// ReportIDHeader carries the archive id of a generated report.
	ReportIDHeader = "X-Report-ID"
	// ReportImageHeader is "embedded", "omitted" (requested but unusable) or "none".
	ReportImageHeader = "X-Report-Image"
)

var allowedImageExt = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "bmp": true, "tiff": true,
}

// generateRequest is the JSON body of POST /reports, or the "request" field of a multipart upload.
type generateRequest struct {
	User       *report.User       `json:"user"`
	Prediction *report.Prediction `json:"prediction"`
	// ImageKey names an MRI scan previously uploaded to object storage.
	ImageKey string `json:"image_key,omitempty"`
}

type linkResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// GenerateReport renders a report and returns it as a PDF attachment.
//
// @Summary Generate an MRI tumor detection report
// @Tags reports
// @Accept json
// @Accept mpfd
// @Produce application/pdf
// @Param request body generateRequest true "Patient and prediction"
// @Success 200 {file} file
// @Failure 400 {object} errorPayload
// @Failure 413 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /reports [post]
func GenerateReport(svc service.ReportService, maxImageBytes int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			body  generateRequest
			image *report.Image
		)

		if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
			form, err := c.MultipartForm()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid multipart form")
			}
			if raw := firstValue(form.Value["request"]); raw != "" {
				if err := json.Unmarshal([]byte(raw), &body); err != nil {
					return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request field")
				}
			}
			if files := form.File["image"]; len(files) > 0 {
				fh := files[0]
				ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fh.Filename), "."))
				if !allowedImageExt[ext] {
					return writeError(c, fiber.StatusBadRequest, "INVALID_FIELD", "image: unsupported file type")
				}
				if maxImageBytes > 0 && fh.Size > maxImageBytes {
					return writeError(c, fiber.StatusRequestEntityTooLarge, "IMAGE_TOO_LARGE",
						fmt.Sprintf("image exceeds %d bytes", maxImageBytes))
				}
				f, err := fh.Open()
				if err != nil {
					return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "cannot open uploaded image")
				}
				data, err := io.ReadAll(f)
				f.Close()
				if err != nil {
					return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "cannot read uploaded image")
				}
				image = &report.Image{Name: fh.Filename, Data: data}
			}
		} else if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}

		res, err := svc.Generate(c.UserContext(), service.GenerateInput{
			Request: report.Request{
				User:       body.User,
				Prediction: body.Prediction,
				Image:      image,
			},
			ImageKey: body.ImageKey,
		})
		if err != nil {
			return writeServiceError(c, err)
		}

		if res.Report != nil {
			c.Set(ReportIDHeader, res.Report.ID)
		}
		switch {
		case res.ImageEmbedded:
			c.Set(ReportImageHeader, "embedded")
		case res.ImageWarning != "":
			c.Set(ReportImageHeader, "omitted")
		default:
			c.Set(ReportImageHeader, "none")
		}
		c.Set(fiber.HeaderContentType, res.ContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", res.Filename))
		return c.Status(fiber.StatusOK).Send(res.PDF)
	}
}

func firstValue(v []string) string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// ListReports pages through archived reports, newest first.
//
// @Summary List archived reports
// @Tags reports
// @Produce json
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} service.ReportListResult
// @Failure 400 {object} errorPayload
// @Router /reports [get]
func ListReports(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetReport returns archived report metadata.
//
// @Summary Get report metadata
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} model.Report
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /reports/{id} [get]
func GetReport(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rec, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(rec)
	}
}

// DownloadReport streams an archived PDF.
//
// @Summary Download an archived report
// @Tags reports
// @Produce application/pdf
// @Param id path string true "Report ID"
// @Success 200 {file} file
// @Failure 404 {object} errorPayload
// @Router /reports/{id}/download [get]
func DownloadReport(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rc, rec, err := svc.Open(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Attachment(rec.Filename)
		c.Set(fiber.HeaderContentType, rec.ContentType)
		// fasthttp closes rc once the body has been written.
		return c.SendStream(rc, int(rec.Size))
	}
}

// ReportLink returns a pre-signed download URL.
//
// @Summary Pre-signed download link
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} linkResponse
// @Failure 404 {object} errorPayload
// @Router /reports/{id}/link [get]
func ReportLink(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		url, exp, err := svc.PresignLink(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(linkResponse{URL: url, ExpiresAt: exp})
	}
}

// DeleteReport removes the stored PDF and its record.
//
// @Summary Delete an archived report
// @Tags reports
// @Param id path string true "Report ID"
// @Success 204
// @Failure 404 {object} errorPayload
// @Router /reports/{id} [delete]
func DeleteReport(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ReportTemplate describes the fixed report layout and model constants.
//
// @Summary Report template information
// @Tags reports
// @Produce json
// @Success 200 {object} report.TemplateInfo
// @Router /reports/template [get]
func ReportTemplate() fiber.Handler {
	info := report.Info()
	return func(c *fiber.Ctx) error {
		return c.JSON(info)
	}
}
