package domain

// Client represents a registered buyer identified by email and CPF
type Client struct {
	ID    int64  `gorm:"primaryKey;autoIncrement" json:"id" form:"id"`
	Name  string `gorm:"size:30;not null" json:"name" form:"name"`
	Email string `gorm:"size:30;not null;uniqueIndex" json:"email" form:"email"`
	Cpf   string `gorm:"size:11;not null;uniqueIndex" json:"cpf" form:"cpf"`
}

// TableName Specify table name
func (Client) TableName() string {
	return "clients"
}
