package domain

import "time"

// User Model
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                        // Primary key
	Name      string    `gorm:"not null" json:"name"`                        // Display name
	Email     string    `gorm:"unique;not null" json:"email"`                // Unique email address
	Password  string    `gorm:"not null" json:"-"`                           // Bcrypt hash, never serialized
	Captions  []Caption `gorm:"foreignKey:UserID" json:"captions,omitempty"` // One-to-many relationship with Caption
	CreatedAt time.Time `json:"createdAt"`                                   // Timestamp of creation
	UpdatedAt time.Time `json:"updatedAt"`                                   // Timestamp of last update
}
