package app

import (
	"github.com/spf13/cast"
	"github.com/vendaslab/comercial/internal/domain"
)

func (a *Application) getSettingsValue(category, name string) string {
	var cfg domain.SysConfig
	if err := a.gormDB.Where("type = ? and name = ?", category, name).First(&cfg).Error; err != nil {
		return ""
	}
	return cfg.Value
}

// GetSettingsStringValue retrieves a string configuration value
func (a *Application) GetSettingsStringValue(category, name string) string {
	return a.getSettingsValue(category, name)
}

// GetSettingsInt64Value retrieves an int64 configuration value
func (a *Application) GetSettingsInt64Value(category, name string) int64 {
	return cast.ToInt64(a.getSettingsValue(category, name))
}

// GetSettingsBoolValue retrieves a boolean configuration value
func (a *Application) GetSettingsBoolValue(category, name string) bool {
	return cast.ToBool(a.getSettingsValue(category, name))
}
