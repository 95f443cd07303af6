package app

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/vendaslab/comercial/internal/domain"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@daily", func() {
		retention := a.GetSettingsInt64Value("system", "oprlog_retention_days")
		if retention <= 0 {
			retention = 365
		}
		a.gormDB.
			Where("opt_time < ?", time.Now().Add(-time.Hour*24*time.Duration(retention))).
			Delete(&domain.SysOprLog{})
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@every 1h", func() {
		a.SchedExpiredProductCheckTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedExpiredProductCheckTask flags catalog items past their expiration
// date that still hold sellable stock. It only reports; stock is never
// mutated outside the order workflow.
func (a *Application) SchedExpiredProductCheckTask() {
	var count int64
	err := a.gormDB.Model(&domain.Product{}).
		Where("expiration_date IS NOT NULL AND expiration_date < ? AND initial_stock > 0", time.Now()).
		Count(&count).Error
	if err != nil {
		zap.L().Error("expired product check failed", zap.Error(err))
		return
	}
	if count > 0 {
		zap.L().Warn("expired products still in stock", zap.Int64("count", count))
	}
}
