package models

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type User struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"not null" json:"name"`
	Email         string    `gorm:"unique;not null" json:"email"`
	EmailVerified bool      `json:"email_verified"`
	Image         string    `json:"image"`
	UserData      *UserData `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user_data,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UserData holds the out-of-band profile bits keyed by user: the role used by
// the admin gate plus the shipping contact details checkout depends on.
type UserData struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"uniqueIndex;not null" json:"user_id"`
	Role      Role      `gorm:"type:VARCHAR(10);default:'user'" json:"role"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}
