package handlers

import (
	"context"

	"ireporter/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockReportService is a testify mock of serviceinterfaces.ReportService.
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) CreateReport(ctx context.Context, principalID int, req models.CreateReportRequest, media []models.UploadFile) (*models.Report, error) {
	args := m.Called(ctx, principalID, req, media)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *MockReportService) GetReport(ctx context.Context, id int) (*models.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *MockReportService) UpdateReport(ctx context.Context, principalID, id int, patch models.ReportPatch, addMedia []models.UploadFile, removeMediaIDs []int) (*models.Report, error) {
	args := m.Called(ctx, principalID, id, patch, addMedia, removeMediaIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *MockReportService) DeleteReport(ctx context.Context, principalID, id int) error {
	args := m.Called(ctx, principalID, id)
	return args.Error(0)
}

func (m *MockReportService) SetReportStatus(ctx context.Context, principalID, id int, newStatus models.ReportStatus) (*models.Report, error) {
	args := m.Called(ctx, principalID, id, newStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *MockReportService) ListReports(ctx context.Context, filter models.ReportFilter, page, pageSize int) (*models.ReportPage, error) {
	args := m.Called(ctx, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReportPage), args.Error(1)
}

// MockUserService is a testify mock of serviceinterfaces.UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) CreateUser(ctx context.Context, username, email, password string, isModerator bool) (*models.User, error) {
	args := m.Called(ctx, username, email, password, isModerator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) AuthenticateUser(ctx context.Context, username, password string) (*models.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) IsModerator(ctx context.Context, userID int) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}
