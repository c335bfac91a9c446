package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mrireport/internal/metrics"
	"mrireport/internal/model"
	"mrireport/internal/report"
	"mrireport/internal/repository"
	"mrireport/internal/storage"
)

var (
	ErrIDRequired      = errors.New("id is required")
	ErrInvalidID       = errors.New("id must be a UUID")
	ErrNotFound        = errors.New("report not found")
	ErrArchiveDisabled = errors.New("report archive is disabled")
)

// GenerateInput is a report request plus an optional object key of an already uploaded scan.
// An image attached to Request takes precedence over ImageKey.
type GenerateInput struct {
	Request  report.Request
	ImageKey string
}

// GenerateResult is the produced PDF. Report is nil when archiving is disabled.
type GenerateResult struct {
	PDF           []byte
	Filename      string
	ContentType   string
	ImageEmbedded bool
	// ImageWarning explains why a requested image is missing from the PDF.
	ImageWarning  string
	Report        *model.Report
}

// ReportListResult is the service-level DTO for paginated reports.
type ReportListResult struct {
	Items []model.Report `json:"data"`
	Total int            `json:"total"`
}

// ReportService defines the report use cases.
type ReportService interface {
	// Generate validates the request, renders the PDF and, when enabled, archives it.
	// If the archive row cannot be saved the stored object is deleted again.
	Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error)

	// List returns archived reports using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*ReportListResult, error)

	Get(ctx context.Context, id string) (*model.Report, error)

	// Open streams an archived PDF. The caller closes the reader.
	Open(ctx context.Context, id string) (io.ReadCloser, *model.Report, error)

	// PresignLink returns a time-limited download URL and its expiry.
	PresignLink(ctx context.Context, id string) (string, time.Time, error)

	// Delete removes the stored PDF, then its row.
	Delete(ctx context.Context, id string) error
}

// Options tunes a ReportService.
type Options struct {
	Archive        bool
	ArchivePrefix  string
	ImageKeyPrefix string
	ImageMaxBytes  int64
	PresignExpiry  time.Duration
	Now            func() time.Time
}

type reportService struct {
	store    storage.Storage
	repo     repository.ReportRepository
	renderer *report.Renderer
	metrics  *metrics.Domain
	log      *zap.Logger
	opt      Options
}

// NewReportService constructs a ReportService. store and repo may be nil when archiving
// is disabled and no image keys are used.
func NewReportService(store storage.Storage, repo repository.ReportRepository, renderer *report.Renderer, m *metrics.Domain, log *zap.Logger, opt Options) ReportService {
	if renderer == nil {
		renderer = report.NewRenderer()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	if opt.ArchivePrefix == "" {
		opt.ArchivePrefix = "reports"
	}
	// Compare whole path segments so "mri_images" does not admit "mri_images_other/".
	if p := strings.Trim(opt.ImageKeyPrefix, "/"); p != "" {
		opt.ImageKeyPrefix = p + "/"
	}
	if opt.PresignExpiry <= 0 {
		opt.PresignExpiry = 15 * time.Minute
	}
	return &reportService{store: store, repo: repo, renderer: renderer, metrics: m, log: log, opt: opt}
}

func (s *reportService) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	req := in.Request
	if err := req.Validate(); err != nil {
		s.metrics.Report(metrics.ReportInvalid)
		return nil, err
	}

	var imageWarning string
	if req.Image == nil && in.ImageKey != "" {
		img, err := s.loadImage(ctx, in.ImageKey)
		if err != nil {
			var fe *report.FieldError
			if errors.As(err, &fe) {
				s.metrics.Report(metrics.ReportInvalid)
				return nil, err
			}
			imageWarning = err.Error()
			s.metrics.ImageOmitted()
			s.log.Warn("report_image_unavailable",
				zap.String("component", "report_service"),
				zap.String("image_key", in.ImageKey),
				zap.Error(err),
			)
		} else {
			req.Image = img
		}
	}

	doc, f, err := report.Build(req)
	if err != nil {
		s.metrics.Report(metrics.ReportInvalid)
		return nil, err
	}

	start := s.opt.Now()
	out, err := s.renderer.Render(doc)
	s.metrics.ObserveRender(s.opt.Now().Sub(start).Seconds())
	if err != nil {
		s.metrics.Report(metrics.ReportFailed)
		return nil, fmt.Errorf("render report: %w", err)
	}
	if out.ImageErr != nil {
		imageWarning = out.ImageErr.Error()
		s.metrics.ImageOmitted()
	}

	res := &GenerateResult{
		PDF:           out.PDF,
		Filename:      doc.Filename,
		ContentType:   report.ContentType,
		ImageEmbedded: out.ImageEmbedded,
		ImageWarning:  imageWarning,
	}

	if s.opt.Archive {
		rec, err := s.archive(ctx, out, f)
		if err != nil {
			s.metrics.Report(metrics.ReportFailed)
			return nil, err
		}
		res.Report = rec
		s.metrics.Archived()
	}

	s.metrics.Report(metrics.ReportGenerated)
	return res, nil
}

// loadImage fetches a previously uploaded scan. Keys outside the image prefix are rejected;
// any other failure is returned as-is so the report degrades to text only.
func (s *reportService) loadImage(ctx context.Context, key string) (*report.Image, error) {
	clean := path.Clean(strings.TrimPrefix(key, "/"))
	if s.opt.ImageKeyPrefix != "" && !strings.HasPrefix(clean, s.opt.ImageKeyPrefix) {
		return nil, &report.FieldError{Field: "image_key", Err: fmt.Errorf("%w: must start with %q", report.ErrInvalidField, s.opt.ImageKeyPrefix)}
	}
	if s.store == nil {
		return nil, errors.New("object storage is not configured")
	}

	data, _, err := storage.ReadAll(ctx, s.store, clean, s.opt.ImageMaxBytes)
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	return &report.Image{Name: path.Base(clean), Data: data}, nil
}

func (s *reportService) archive(ctx context.Context, out *report.Rendered, f report.Fields) (*model.Report, error) {
	if s.store == nil || s.repo == nil {
		return nil, ErrArchiveDisabled
	}

	id := uuid.New().String()
	key := path.Join(s.opt.ArchivePrefix, id+".pdf")

	info, err := s.store.Put(ctx, key, bytes.NewReader(out.PDF), storage.PutObjectOptions{
		Size:               int64(len(out.PDF)),
		ContentType:        report.ContentType,
		ContentDisposition: attachment(report.Filename),
		Metadata: map[string]string{
			"template-version": report.TemplateVersion,
			"prediction":       f.Prediction,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	rec := &model.Report{
		ID:              id,
		Filename:        report.Filename,
		StoragePath:     info.Key,
		Size:            info.Size,
		ContentType:     report.ContentType,
		PatientName:     f.Name,
		PatientEmail:    f.Email,
		Prediction:      f.Prediction,
		Confidence:      report.RoundConfidence(f.Confidence),
		ImageEmbedded:   out.ImageEmbedded,
		TemplateVersion: report.TemplateVersion,
		CreatedAt:       s.opt.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, rec)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log.Error("report_archive_rollback_failed",
				zap.String("component", "report_service"),
				zap.String("key", key),
				zap.Error(delErr),
			)
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

// List returns paginated reports without exposing repository types.
func (s *reportService) List(ctx context.Context, limit, offset int) (*ReportListResult, error) {
	if s.repo == nil {
		return nil, ErrArchiveDisabled
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ReportListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *reportService) Get(ctx context.Context, id string) (*model.Report, error) {
	if s.repo == nil {
		return nil, ErrArchiveDisabled
	}
	if id == "" {
		return nil, ErrIDRequired
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (s *reportService) Open(ctx context.Context, id string) (io.ReadCloser, *model.Report, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.store.Get(ctx, rec.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("get from storage: %w", err)
	}
	return rc, rec, nil
}

func (s *reportService) PresignLink(ctx context.Context, id string) (string, time.Time, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return "", time.Time{}, err
	}
	expiresAt := s.opt.Now().Add(s.opt.PresignExpiry).UTC()
	url, err := s.store.PresignGet(ctx, rec.StoragePath, s.opt.PresignExpiry, rec.Filename)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("presign: %w", err)
	}
	return url, expiresAt, nil
}

// Delete removes a report from storage, then deletes its record.
func (s *reportService) Delete(ctx context.Context, id string) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	// Storage first; if this fails the row still points at the object.
	if err := s.store.Delete(ctx, rec.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repo.Delete(ctx, id)
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}
