package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mrireport/internal/dashboard"
	"mrireport/internal/model"
	"mrireport/internal/report"
	"mrireport/internal/service"
	serviceMocks "mrireport/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})

	t.Run("no database configured", func(t *testing.T) {
		app := fiber.New()
		app.Get("/health", HealthCheck(nil))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func pdfResult(id string) *service.GenerateResult {
	res := &service.GenerateResult{
		PDF:         []byte("%PDF-1.3 fake"),
		Filename:    "MRI_Tumor_Report.pdf",
		ContentType: "application/pdf",
	}
	if id != "" {
		res.Report = &model.Report{ID: id}
	}
	return res
}

const jsonBody = `{"user":{"name":"Jane Doe","email":"jane@example.com"},"prediction":{"data":{"prediction":"glioma","confidence":93.456}},"image_key":"mri_images/a.jpg"}`

func multipartBody(t *testing.T, request string, filename string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("request", request))
	if filename != "" {
		part, err := writer.CreateFormFile("image", filename)
		require.NoError(t, err)
		part.Write(image)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestGenerateReport(t *testing.T) {
	mockSvc := new(serviceMocks.MockReportService)
	app := fiber.New()
	app.Post("/reports", GenerateReport(mockSvc, 16))

	t.Run("json success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Generate", mock.Anything, mock.MatchedBy(func(in service.GenerateInput) bool {
			return in.Request.User.Name == "Jane Doe" &&
				*in.Request.Prediction.Data.Confidence == 93.456 &&
				in.Request.Image == nil &&
				in.ImageKey == "mri_images/a.jpg"
		})).Return(pdfResult(id), nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		assert.Equal(t, `attachment; filename="MRI_Tumor_Report.pdf"`, resp.Header.Get("Content-Disposition"))
		assert.Equal(t, id, resp.Header.Get(ReportIDHeader))
		assert.Equal(t, "none", resp.Header.Get(ReportImageHeader))

		b, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "%PDF-1.3 fake", string(b))
		mockSvc.AssertExpectations(t)
	})

	t.Run("multipart with image", func(t *testing.T) {
		res := pdfResult("")
		res.ImageEmbedded = true
		mockSvc.On("Generate", mock.Anything, mock.MatchedBy(func(in service.GenerateInput) bool {
			return in.Request.Image != nil &&
				in.Request.Image.Name == "scan.png" &&
				string(in.Request.Image.Data) == "pngbytes" &&
				in.Request.User.Email == "jane@example.com"
		})).Return(res, nil).Once()

		body, ct := multipartBody(t, jsonBody, "scan.png", []byte("pngbytes"))
		req := httptest.NewRequest(http.MethodPost, "/reports", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "embedded", resp.Header.Get(ReportImageHeader))
		assert.Empty(t, resp.Header.Get(ReportIDHeader))
		mockSvc.AssertExpectations(t)
	})

	t.Run("image omitted", func(t *testing.T) {
		res := pdfResult("")
		res.ImageWarning = "load image: not found"
		mockSvc.On("Generate", mock.Anything, mock.Anything).Return(res, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "omitted", resp.Header.Get(ReportImageHeader))
		mockSvc.AssertExpectations(t)
	})

	t.Run("unsupported image type", func(t *testing.T) {
		body, ct := multipartBody(t, jsonBody, "scan.svg", []byte("<svg/>"))
		req := httptest.NewRequest(http.MethodPost, "/reports", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_FIELD", res.Error.Code)
	})

	t.Run("image too large", func(t *testing.T) {
		body, ct := multipartBody(t, jsonBody, "scan.jpg", bytes.Repeat([]byte{0xff}, 17))
		req := httptest.NewRequest(http.MethodPost, "/reports", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "IMAGE_TOO_LARGE", res.Error.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(`{"user":`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "BAD_REQUEST", res.Error.Code)
	})

	t.Run("validation errors", func(t *testing.T) {
		tests := []struct {
			err      error
			wantCode string
			wantMsg  string
		}{
			{&report.FieldError{Field: "user.email", Err: report.ErrMissingRequiredField}, "MISSING_REQUIRED_FIELD", "user.email: missing required field"},
			{&report.FieldError{Field: "prediction.data.confidence", Err: report.ErrInvalidField}, "INVALID_FIELD", "prediction.data.confidence: invalid field"},
		}
		for _, tt := range tests {
			mockSvc.On("Generate", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			req := httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(jsonBody))
			req.Header.Set("Content-Type", "application/json")
			resp, _ := app.Test(req)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var res errorPayload
			json.NewDecoder(resp.Body).Decode(&res)
			assert.Equal(t, tt.wantCode, res.Error.Code)
			assert.Equal(t, tt.wantMsg, res.Error.Message)
		}
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Generate", mock.Anything, mock.Anything).Return(nil, errors.New("db save failed: boom")).Once()

		req := httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INTERNAL_ERROR", res.Error.Code)
		assert.NotContains(t, res.Error.Message, "boom")
		mockSvc.AssertExpectations(t)
	})
}

func TestListReports(t *testing.T) {
	mockSvc := new(serviceMocks.MockReportService)
	app := fiber.New()
	app.Get("/reports", ListReports(mockSvc))

	t.Run("success", func(t *testing.T) {
		expectedRes := &service.ReportListResult{
			Items: []model.Report{{ID: uuid.New().String(), Filename: "MRI_Tumor_Report.pdf"}},
			Total: 1,
		}
		mockSvc.On("List", mock.Anything, 10, 0).Return(expectedRes, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/reports?limit=10&offset=0", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.ReportListResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/reports?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_LIMIT", body.Error.Code)
	})

	t.Run("archive disabled", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 10, 0).Return(nil, service.ErrArchiveDisabled).Once()

		req := httptest.NewRequest(http.MethodGet, "/reports", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 10, 0).Return(nil, errors.New("service error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/reports", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetReport(t *testing.T) {
	mockSvc := new(serviceMocks.MockReportService)
	app := fiber.New()
	app.Get("/reports/:id", GetReport(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(&model.Report{ID: id, Prediction: "glioma"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/reports/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Report
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, id, result.ID)
		assert.Equal(t, "glioma", result.Prediction)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/reports/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/reports/invalid-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_ID", res.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, errors.New("db error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/reports/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestDownloadReport(t *testing.T) {
	mockSvc := new(serviceMocks.MockReportService)
	app := fiber.New()
	app.Get("/reports/:id/download", DownloadReport(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		rec := &model.Report{ID: id, Filename: "MRI_Tumor_Report.pdf", ContentType: "application/pdf", Size: 13}
		mockSvc.On("Open", mock.Anything, id).Return(io.NopCloser(strings.NewReader("%PDF-1.3 fake")), rec, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/reports/"+id+"/download", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "MRI_Tumor_Report.pdf")
		b, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "%PDF-1.3 fake", string(b))
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Open", mock.Anything, id).Return(nil, nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/reports/"+id+"/download", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestReportLink(t *testing.T) {
	mockSvc := new(serviceMocks.MockReportService)
	app := fiber.New()
	app.Get("/reports/:id/link", ReportLink(mockSvc))

	id := uuid.New().String()
	exp := time.Date(2026, 5, 4, 10, 45, 0, 0, time.UTC)
	mockSvc.On("PresignLink", mock.Anything, id).Return("https://minio.local/reports/x.pdf?sig", exp, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/reports/"+id+"/link", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body linkResponse
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, "https://minio.local/reports/x.pdf?sig", body.URL)
	assert.True(t, exp.Equal(body.ExpiresAt))
	mockSvc.AssertExpectations(t)
}

func TestDeleteReport(t *testing.T) {
	mockSvc := new(serviceMocks.MockReportService)
	app := fiber.New()
	app.Delete("/reports/:id", DeleteReport(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/reports/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/reports/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(errors.New("delete error")).Once()

		req := httptest.NewRequest(http.MethodDelete, "/reports/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestReportTemplate(t *testing.T) {
	app := fiber.New()
	app.Get("/reports/template", ReportTemplate())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/reports/template", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var info report.TemplateInfo
	json.NewDecoder(resp.Body).Decode(&info)
	assert.Equal(t, report.Info(), info)
}

type fakeDashboard struct {
	view       dashboard.ViewModel
	refreshed  dashboard.ViewModel
	refreshErr error
	calls      int
}

func (f *fakeDashboard) View() dashboard.ViewModel { return f.view }

func (f *fakeDashboard) Refresh(ctx context.Context) (dashboard.ViewModel, error) {
	f.calls++
	return f.refreshed, f.refreshErr
}

func TestDashboard(t *testing.T) {
	t.Run("current view", func(t *testing.T) {
		store := &fakeDashboard{view: dashboard.Build(nil)}
		app := fiber.New()
		app.Get("/admin/dashboard", GetDashboard(store))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var vm dashboard.ViewModel
		json.NewDecoder(resp.Body).Decode(&vm)
		assert.Equal(t, dashboard.StatusLoading, vm.Status)
		assert.True(t, vm.Loading)
		assert.Zero(t, vm.TotalDoctors)
		assert.Zero(t, store.calls)
	})

	t.Run("refresh success", func(t *testing.T) {
		total := int64(12)
		store := &fakeDashboard{refreshed: dashboard.Build(&dashboard.Snapshot{Doctors: &dashboard.DoctorCounts{Total: &total}})}
		app := fiber.New()
		app.Post("/admin/dashboard/refresh", RefreshDashboard(store, time.Second))

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/admin/dashboard/refresh", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var vm dashboard.ViewModel
		json.NewDecoder(resp.Body).Decode(&vm)
		assert.Equal(t, dashboard.StatusReady, vm.Status)
		assert.Equal(t, int64(12), vm.TotalDoctors)
		assert.Equal(t, 1, store.calls)
	})

	t.Run("refresh failure", func(t *testing.T) {
		store := &fakeDashboard{refreshErr: errors.Join(dashboard.ErrDataUnavailable, errors.New("dial tcp 10.0.0.5:5000: connection refused"))}
		app := fiber.New()
		app.Post("/admin/dashboard/refresh", RefreshDashboard(store, time.Second))

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/admin/dashboard/refresh", nil))
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body dashboardErrorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "DATA_UNAVAILABLE", body.Error.Code)
		assert.NotContains(t, body.Error.Message, "10.0.0.5")
		assert.True(t, body.Dashboard.Unavailable)
		assert.Equal(t, dashboard.Counters{}, body.Dashboard.Counters)
	})
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	mockSvc := new(serviceMocks.MockReportService)
	// Register all routes
	RegisterRoutes(app, nil, mockSvc, &fakeDashboard{}, RouteOptions{MaxImageBytes: 1 << 20})

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Health endpoint only allows GET
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "METHOD_NOT_ALLOWED", res.Error.Code)
	})

	t.Run("template is not an id", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/reports/template", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}
