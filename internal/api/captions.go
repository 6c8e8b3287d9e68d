package api

import (
	"context" // Context for Redis operations
	"errors"  // For gorm error matching
	"net/http"
	"strconv" // String conversion

	"caption_contest/internal/cache"  // Read-through cache
	"caption_contest/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Client-facing message for ownership failures on captions
const notOwnerMessage = "User has unauthorized/lacking permissions"

// CreateCaptionRequest carries the fields for a new caption. The owning
// user is never accepted from the body; it always comes from the token.
type CreateCaptionRequest struct {
	PhotoID uint   `json:"photo_id"` // Image being captioned
	Comment string `json:"comment"`  // Caption text
}

// UpdateCaptionRequest carries the one mutable caption field
type UpdateCaptionRequest struct {
	Comment string `json:"comment"` // New caption text, empty keeps the old one
}

// GetCaptionHandler returns a single caption with its image and author,
// served through the caption cache
func GetCaptionHandler(db *gorm.DB, captions *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.Param("id")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		ctx := context.Background() // Context for Redis operations
		var caption domain.Caption
		// Read through the cache, loading the image and author eagerly on a miss
		err = captions.Fetch(ctx, idStr, &caption, func() (any, error) {
			var row domain.Caption
			if err := db.Preload("Photo").Preload("User").First(&row, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, nil // Missing row is not an error, just no value
				}
				return nil, err
			}
			return &row, nil
		})
		if errors.Is(err, cache.ErrNoValue) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Caption not present"})
			return
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{"caption_id": id, "error": err.Error()}).Error("Failed to fetch caption")
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		c.JSON(http.StatusOK, caption) // Return caption with photo and user
	}
}

// CreateCaptionHandler adds a caption on behalf of the authenticated user.
// Any user_id in the request body is ignored, which is what prevents
// impersonation.
func CreateCaptionHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Token not provided. Access denied."})
			return
		}
		var req CreateCaptionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		caption := domain.Caption{
			PhotoID: req.PhotoID,   // Image being captioned
			UserID:  authID.(uint), // Owner comes from the token, never the body
			Comment: req.Comment,   // Caption text
		}
		// Attempt to create the caption in the database
		if err := db.Create(&caption).Error; err != nil {
			logrus.WithFields(logrus.Fields{"user_id": authID, "error": err.Error()}).Error("Failed to create caption")
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		c.JSON(http.StatusCreated, caption) // Return the created caption
	}
}

// UpdateCaptionHandler lets a caption's creator change its comment
func UpdateCaptionHandler(db *gorm.DB, captions *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		authID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Token not provided. Access denied."})
			return
		}
		idStr := c.Param("id")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		var req UpdateCaptionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		var caption domain.Caption // Load the target row
		if err := db.First(&caption, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "Requested caption not found"})
				return
			}
			logrus.WithFields(logrus.Fields{"caption_id": id, "error": err.Error()}).Error("Failed to load caption")
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		// Only the creator may mutate a caption
		if caption.UserID != authID.(uint) {
			c.JSON(http.StatusForbidden, gin.H{"message": notOwnerMessage})
			return
		}
		// Apply only the provided field
		if req.Comment != "" {
			caption.Comment = req.Comment
		}
		if err := db.Save(&caption).Error; err != nil {
			logrus.WithFields(logrus.Fields{"caption_id": id, "error": err.Error()}).Error("Failed to update caption")
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		// Invalidate the cached entry so the next read sees the new state
		_ = captions.Delete(context.Background(), idStr)
		c.JSON(http.StatusOK, caption) // Return the updated caption
	}
}

// DeleteCaptionHandler lets a caption's creator remove it
func DeleteCaptionHandler(db *gorm.DB, captions *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		authID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Token not provided. Access denied."})
			return
		}
		idStr := c.Param("id")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		var caption domain.Caption // Load the target row
		if err := db.First(&caption, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Delete of a missing row is a 400, not a 404
				c.JSON(http.StatusBadRequest, gin.H{"message": "Requested caption not found"})
				return
			}
			logrus.WithFields(logrus.Fields{"caption_id": id, "error": err.Error()}).Error("Failed to load caption")
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		// Only the creator may mutate a caption
		if caption.UserID != authID.(uint) {
			c.JSON(http.StatusForbidden, gin.H{"message": notOwnerMessage})
			return
		}
		if err := db.Delete(&caption).Error; err != nil {
			logrus.WithFields(logrus.Fields{"caption_id": id, "error": err.Error()}).Error("Failed to delete caption")
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		// Invalidate the cached entry after the destroy
		_ = captions.Delete(context.Background(), idStr)
		c.Status(http.StatusNoContent) // Empty body on success
	}
}
