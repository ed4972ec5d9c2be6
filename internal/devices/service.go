package devices

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abolfazlirani/asar-backend-app/internal/logging"
	"github.com/abolfazlirani/asar-backend-app/internal/pagination"
	"github.com/abolfazlirani/asar-backend-app/pkg/interfaces"
)

const (
	DefaultMinSupportedVersion = "1.0.0"
	DefaultListLimit           = 20
)

var ErrRepositoryRequired = errors.New("devices: repository is required")

type Service interface {
	Splash(ctx context.Context, userID uuid.UUID, info DeviceInfo, ip string) (*SplashResponse, error)
	ListLogs(ctx context.Context, userID *uuid.UUID, platform string, page, limit int) (*LogList, error)
}

type ServiceOption func(*service)

// WithMinSupportedVersion sets the version reported in the splash header.
func WithMinSupportedVersion(version string) ServiceOption {
	return func(s *service) {
		if trimmed := strings.TrimSpace(version); trimmed != "" {
			s.minVersion = trimmed
		}
	}
}

func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	repo       Repository
	minVersion string
	now        func() time.Time
	id         func() uuid.UUID
	logger     interfaces.Logger
}

func NewService(repo Repository, opts ...ServiceOption) Service {
	if repo == nil {
		panic(ErrRepositoryRequired)
	}
	s := &service{
		repo:       repo,
		minVersion: DefaultMinSupportedVersion,
		now:        time.Now,
		id:         uuid.New,
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Splash records the launch and returns the update header. Devices that
// report an Android version are logged as android, all others as ios.
func (s *service) Splash(ctx context.Context, userID uuid.UUID, info DeviceInfo, ip string) (*SplashResponse, error) {
	platform := PlatformIOS
	if value := info.AndroidVersion; value != nil && strings.TrimSpace(*value) != "" {
		platform = PlatformAndroid
	}
	var address *string
	if trimmed := strings.TrimSpace(ip); trimmed != "" {
		address = &trimmed
	}
	_, err := s.repo.Create(ctx, &DeviceLog{
		ID:             s.id(),
		UserID:         userID,
		FirebaseToken:  info.FirebaseToken,
		PhoneModel:     info.PhoneModel,
		AndroidVersion: info.AndroidVersion,
		AppVersion:     info.AppVersion,
		IPAddress:      address,
		Platform:       platform,
		CreatedAt:      s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithContext(ctx).Debug("devices.splash", "user_id", userID, "platform", platform)
	return &SplashResponse{Header: UpdateHeader{MinSupportedVersion: s.minVersion}}, nil
}

func (s *service) ListLogs(ctx context.Context, userID *uuid.UUID, platform string, page, limit int) (*LogList, error) {
	window := pagination.Normalize(page, limit, DefaultListLimit)
	records, total, err := s.repo.List(ctx, LogFilter{
		UserID:   userID,
		Platform: platform,
		Limit:    window.Limit,
		Offset:   window.Offset(),
	})
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*DeviceLog{}
	}
	return &LogList{Logs: records, Metadata: pagination.Info(total, window.Limit, window.Page)}, nil
}
