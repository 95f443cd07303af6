package app

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/vendaslab/comercial/internal/domain"
	"github.com/vendaslab/comercial/pkg/common"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// checkSuper ensures the default admin account exists and keeps its
// privilege level intact.
func (a *Application) checkSuper() {
	const superUsername = "admin"
	const defaultPassword = "comercial"

	var operator domain.User
	err := a.gormDB.Where("username = ?", superUsername).First(&operator).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hashed, herr := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
		if herr != nil {
			zap.L().Error("failed to hash default admin password", zap.Error(herr))
			return
		}
		if err := a.gormDB.Create(&domain.User{
			ID:        common.UUIDint64(),
			Username:  superUsername,
			Email:     "admin@localhost",
			Password:  string(hashed),
			Role:      "admin",
			Status:    common.ENABLED,
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default admin account", zap.String("username", superUsername))
		}
		return
	case err != nil:
		zap.L().Error("failed to query default admin", zap.Error(err))
		return
	}

	resetRole := !strings.EqualFold(operator.Role, "admin")
	resetStatus := !strings.EqualFold(operator.Status, common.ENABLED)
	if !resetRole && !resetStatus {
		return
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if resetRole {
		updates["role"] = "admin"
	}
	if resetStatus {
		updates["status"] = common.ENABLED
	}
	if err := a.gormDB.Model(&domain.User{}).Where("id = ?", operator.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair default admin account", zap.Error(err))
		return
	}
	zap.L().Warn("repaired default admin account",
		zap.String("username", superUsername),
		zap.Bool("roleReset", resetRole),
		zap.Bool("statusEnabled", resetStatus))
}

type settingSchema struct {
	Category    string
	Name        string
	Default     string
	Description string
}

var settingSchemas = []settingSchema{
	{"catalog", "unique_section", "false", "Enforce one product per section (deployment variant)"},
	{"system", "oprlog_retention_days", "365", "Days to keep operation log entries"},
}

// checkSettings initializes missing sys_config entries with defaults
func (a *Application) checkSettings() {
	for sortid, schema := range settingSchemas {
		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", schema.Category, schema.Name).
			Count(&count)

		if count == 0 {
			a.gormDB.Create(&domain.SysConfig{
				Sort:   sortid,
				Type:   schema.Category,
				Name:   schema.Name,
				Value:  schema.Default,
				Remark: schema.Description,
			})
			zap.L().Info("initialized config",
				zap.String("key", schema.Category+"."+schema.Name),
				zap.String("default", schema.Default))
		}
	}
}
