package settings

import "time"

// NetworkSetting keeps the external key/value shape the settings store
// expects; values are validated against a fixed schema before the core
// reads them.
type NetworkSetting struct {
	Key       string    `json:"key" gorm:"column:setting_key;primaryKey"`
	Value     string    `json:"value" gorm:"column:setting_value;not null"`
	UpdatedBy *string   `json:"updated_by" gorm:"column:updated_by"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (NetworkSetting) TableName() string {
	return "network_settings"
}
