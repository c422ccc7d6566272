package model

import "time"

// AppSetting is admin-managed configuration. The streaming platform allowlist
// lives under the key "streaming_allowlist" as a JSON array of names.
type AppSetting struct {
	Key       string    `gorm:"size:100;primaryKey" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

const SettingStreamingAllowlist = "streaming_allowlist"
