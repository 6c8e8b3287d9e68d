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

// Generic client-facing message for storage failures; details go to the log only
const txErrorMessage = "An error occurred during transaction"

// ImageRequest carries the mutable image fields
type ImageRequest struct {
	Name     string `json:"name"`     // Image title
	URL      string `json:"url"`      // Path/URI to the asset
	Citation string `json:"citation"` // Optional attribution
}

// ListImagesHandler returns all images ordered by creation time
func ListImagesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		images := make([]domain.Image, 0)
		// Fetch all images, oldest first; an empty table yields []
		if err := db.Order("created_at ASC").Find(&images).Error; err != nil {
			logrus.WithFields(logrus.Fields{"error": err.Error()}).Error("Failed to list images")
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		c.JSON(http.StatusOK, images) // Return the list, possibly empty
	}
}

// GetImageHandler returns a single image with its captions, served
// through the image cache
func GetImageHandler(db *gorm.DB, images *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.Param("id")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			// Malformed id behaves like any other failed lookup
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		ctx := context.Background() // Context for Redis operations
		var image domain.Image
		// Read through the cache, loading captions eagerly on a miss
		err = images.Fetch(ctx, idStr, &image, func() (any, error) {
			var img domain.Image
			if err := db.Preload("Captions").First(&img, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, nil // Missing row is not an error, just no value
				}
				return nil, err
			}
			return &img, nil
		})
		if errors.Is(err, cache.ErrNoValue) {
			// No such image
			c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
			return
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{"image_id": id, "error": err.Error()}).Error("Failed to fetch image")
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		c.JSON(http.StatusOK, image) // Return image with captions
	}
}

// CreateImageHandler adds a new image
func CreateImageHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ImageRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		image := domain.Image{Name: req.Name, URL: req.URL, Citation: req.Citation}
		// Attempt to create the image in the database
		if err := db.Create(&image).Error; err != nil {
			logrus.WithFields(logrus.Fields{"error": err.Error()}).Error("Failed to create image")
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		c.JSON(http.StatusCreated, image) // Return the created image
	}
}

// UpdateImageHandler applies a partial update to an image. Omitted fields
// keep their existing values. There is no ownership check on images.
func UpdateImageHandler(db *gorm.DB, images *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.Param("id")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		var req ImageRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		var image domain.Image // Load the target row
		if err := db.First(&image, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
				return
			}
			logrus.WithFields(logrus.Fields{"image_id": id, "error": err.Error()}).Error("Failed to load image")
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		// Apply only the provided fields
		if req.Name != "" {
			image.Name = req.Name
		}
		if req.URL != "" {
			image.URL = req.URL
		}
		if req.Citation != "" {
			image.Citation = req.Citation
		}
		if err := db.Save(&image).Error; err != nil {
			logrus.WithFields(logrus.Fields{"image_id": id, "error": err.Error()}).Error("Failed to update image")
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		// Invalidate the cached entry so the next read sees the new state
		_ = images.Delete(context.Background(), idStr)
		c.JSON(http.StatusOK, image) // Return the updated image
	}
}

// DeleteImageHandler removes an image. Its captions are left in place.
func DeleteImageHandler(db *gorm.DB, images *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.Param("id")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		var image domain.Image // Load the target row
		if err := db.First(&image, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Delete of a missing row is a 400, not a 404
				c.JSON(http.StatusBadRequest, gin.H{"message": "Image not found"})
				return
			}
			logrus.WithFields(logrus.Fields{"image_id": id, "error": err.Error()}).Error("Failed to load image")
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		if err := db.Delete(&image).Error; err != nil {
			logrus.WithFields(logrus.Fields{"image_id": id, "error": err.Error()}).Error("Failed to delete image")
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		// Invalidate the cached entry after the destroy
		_ = images.Delete(context.Background(), idStr)
		c.Status(http.StatusNoContent) // Empty body on success
	}
}
