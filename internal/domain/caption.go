package domain

import "time"

// Caption Model
type Caption struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                     // Primary key
	PhotoID   uint      `gorm:"column:photo_id" json:"photo_id"`          // Foreign key to Image
	UserID    uint      `gorm:"column:user_id" json:"user_id"`            // Foreign key to User, set from the authenticated identity
	Comment   string    `json:"comment"`                                  // Caption text
	Photo     *Image    `gorm:"foreignKey:PhotoID" json:"photo,omitempty"` // Image this caption belongs to
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`   // User who wrote the caption
	CreatedAt time.Time `json:"createdAt"`                                 // Timestamp of creation
	UpdatedAt time.Time `json:"updatedAt"`                                 // Timestamp of last update
}
