package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"mrireport/internal/model"
	"mrireport/internal/service"
)

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Generate(ctx context.Context, in service.GenerateInput) (*service.GenerateResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GenerateResult), args.Error(1)
}

func (m *MockReportService) List(ctx context.Context, limit, offset int) (*service.ReportListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReportListResult), args.Error(1)
}

func (m *MockReportService) Get(ctx context.Context, id string) (*model.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockReportService) Open(ctx context.Context, id string) (io.ReadCloser, *model.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(*model.Report), args.Error(2)
}

func (m *MockReportService) PresignLink(ctx context.Context, id string) (string, time.Time, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockReportService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
