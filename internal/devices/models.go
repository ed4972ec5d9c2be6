package devices

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/abolfazlirani/asar-backend-app/internal/pagination"
)

const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
)

// DeviceInfo is what the app reports on every launch.
type DeviceInfo struct {
	FirebaseToken  *string `json:"firebase_token"`
	PhoneModel     *string `json:"phone_model"`
	AndroidVersion *string `json:"android_version"`
	AppVersion     *string `json:"app_version"`
}

// DeviceLog is one recorded app launch.
type DeviceLog struct {
	bun.BaseModel `bun:"table:user_device_logs,alias:dl"`

	ID             uuid.UUID `bun:",pk,type:uuid"                                json:"id"`
	UserID         uuid.UUID `bun:"user_id,notnull,type:uuid"                     json:"user_id"`
	FirebaseToken  *string   `bun:"firebase_token"                                json:"firebase_token"`
	PhoneModel     *string   `bun:"phone_model"                                   json:"phone_model"`
	AndroidVersion *string   `bun:"android_version"                               json:"android_version"`
	AppVersion     *string   `bun:"app_version"                                   json:"app_version"`
	IPAddress      *string   `bun:"ip_address"                                    json:"ip_address"`
	Platform       string    `bun:"platform,notnull"                              json:"platform"`
	CreatedAt      time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// UpdateHeader tells the app whether it must update before continuing.
type UpdateHeader struct {
	ShowUpdateDialog    bool   `json:"show_update_dialog"`
	ForceUpdate         bool   `json:"force_update"`
	MinSupportedVersion string `json:"min_supported_version"`
}

// SplashResponse is the remote config returned on launch.
type SplashResponse struct {
	Header UpdateHeader `json:"header"`
}

// LogList is one page of device logs.
type LogList struct {
	Logs     []*DeviceLog        `json:"logs"`
	Metadata pagination.Metadata `json:"metadata"`
}

// LogFilter narrows the admin listing.
type LogFilter struct {
	UserID   *uuid.UUID
	Platform string
	Limit    int
	Offset   int
}
