package domain

import "time"

// Image Model
type Image struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                         // Primary key
	Name      string    `json:"name"`                                         // Image title
	URL       string    `gorm:"column:url" json:"url"`                        // Path/URI to the asset
	Citation  string    `json:"citation"`                                     // Optional attribution
	Captions  []Caption `gorm:"foreignKey:PhotoID" json:"captions,omitempty"` // One-to-many relationship with Caption
	CreatedAt time.Time `json:"createdAt"`                                    // Timestamp of creation
	UpdatedAt time.Time `json:"updatedAt"`                                    // Timestamp of last update
}
