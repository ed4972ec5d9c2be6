package devices_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/abolfazlirani/asar-backend-app/internal/devices"
	"github.com/abolfazlirani/asar-backend-app/pkg/testsupport"
)

func strPtr(s string) *string { return &s }

func newService(t *testing.T, opts ...devices.ServiceOption) devices.Service {
	t.Helper()
	db := testsupport.NewBunDB(t, (*devices.DeviceLog)(nil))
	clock := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	opts = append([]devices.ServiceOption{devices.WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})}, opts...)
	return devices.NewService(devices.NewBunRepository(db), opts...)
}

func TestSplashRecordsPlatform(t *testing.T) {
	svc := newService(t, devices.WithMinSupportedVersion("2.1.0"))
	ctx := context.Background()
	user := uuid.New()

	resp, err := svc.Splash(ctx, user, devices.DeviceInfo{AndroidVersion: strPtr("14"), AppVersion: strPtr("2.3.0")}, "10.0.0.1")
	if err != nil {
		t.Fatalf("splash: %v", err)
	}
	if resp.Header.ShowUpdateDialog || resp.Header.ForceUpdate || resp.Header.MinSupportedVersion != "2.1.0" {
		t.Fatalf("unexpected header %+v", resp.Header)
	}
	if _, err := svc.Splash(ctx, user, devices.DeviceInfo{PhoneModel: strPtr("iPhone 15")}, ""); err != nil {
		t.Fatalf("splash: %v", err)
	}

	list, err := svc.ListLogs(ctx, &user, "", 1, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(list.Logs))
	}
	if list.Logs[0].Platform != devices.PlatformIOS || list.Logs[0].IPAddress != nil {
		t.Fatalf("unexpected newest log %+v", list.Logs[0])
	}
	if list.Logs[1].Platform != devices.PlatformAndroid || list.Logs[1].IPAddress == nil || *list.Logs[1].IPAddress != "10.0.0.1" {
		t.Fatalf("unexpected android log %+v", list.Logs[1])
	}

	android, err := svc.ListLogs(ctx, nil, devices.PlatformAndroid, 1, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if android.Metadata.TotalCount != 1 {
		t.Fatalf("expected one android log, got %d", android.Metadata.TotalCount)
	}
}

func TestSplashDefaultsMinVersion(t *testing.T) {
	svc := newService(t)
	resp, err := svc.Splash(context.Background(), uuid.New(), devices.DeviceInfo{}, "")
	if err != nil {
		t.Fatalf("splash: %v", err)
	}
	if resp.Header.MinSupportedVersion != devices.DefaultMinSupportedVersion {
		t.Fatalf("unexpected min version %q", resp.Header.MinSupportedVersion)
	}
}
