package domain

import "time"

// User is an API operator account. Password holds a bcrypt hash.
type User struct {
	ID        int64     `json:"id,string" form:"id"`
	Username  string    `gorm:"size:64;not null;uniqueIndex" json:"username" form:"username"`
	Email     string    `gorm:"size:128;not null;uniqueIndex" json:"email" form:"email"`
	Password  string    `gorm:"size:128;not null" json:"-" form:"-"`
	Role      string    `gorm:"size:16;not null" json:"role" form:"role"` // 'admin' or 'user'
	Status    string    `gorm:"size:16" json:"status" form:"status"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (User) TableName() string {
	return "users"
}

type SysConfig struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id" form:"id"`
	Sort      int       `json:"sort" form:"sort"`
	Type      string    `gorm:"index" json:"type" form:"type"`
	Name      string    `gorm:"index" json:"name" form:"name"`
	Value     string    `json:"value" form:"value"`
	Remark    string    `json:"remark" form:"remark"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (SysConfig) TableName() string {
	return "sys_config"
}

// SysOprLog records mutating API calls for auditing
type SysOprLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OprName   string    `json:"opr_name"`
	OprIp     string    `json:"opr_ip"`
	OptAction string    `json:"opt_action"`
	OptDesc   string    `json:"opt_desc"`
	OptTime   time.Time `json:"opt_time"`
}

// TableName Specify table name
func (SysOprLog) TableName() string {
	return "sys_opr_log"
}
