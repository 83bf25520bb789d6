package models

import (
	"time"

	"github.com/google/uuid"
)

// User 是身份服务中的用户记录。这里只读取它，用于存在性检查和展示字段。
type User struct {
	BaseModel
	Email       string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName    *string   `gorm:"type:varchar(255)" json:"full_name"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	IsSuperuser bool      `gorm:"not null;default:false" json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserBasicInfo holds the display fields attached to read-side views.
type UserBasicInfo struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName *string   `json:"full_name"`
}

// TableName 指定 User 模型的表名。
func (User) TableName() string {
	return "users"
}
