package models

import "time"

// UserModel is a planner account. Email is the login identifier.
type UserModel struct {
	AccountBase
	Email         string     `json:"email"           gorm:"type:varchar(255);uniqueIndex;not null"`
	Password      string     `json:"-"               gorm:"not null"`
	Name          string     `json:"name"`
	LastLoginTime *time.Time `json:"last_login_time"`
	LastLoginIP   string     `json:"last_login_ip"`
}

func (UserModel) TableName() string { return "users" }

// DisplayName falls back to the email when no name was set.
func (u *UserModel) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
