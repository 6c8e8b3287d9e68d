package api

import (
	"context" // Context for Redis operations
	"errors"  // For gorm error matching
	"net/http"
	"strconv" // String conversion

	"caption_contest/internal/cache"  // Read-through cache
	"caption_contest/internal/domain" // Importing domain models
	"caption_contest/internal/utils"  // JWT utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// Bcrypt cost used for all stored passwords
const bcryptCost = 11

// Client-facing message for failed logins; deliberately identical for an
// unknown email and a wrong password so valid emails cannot be probed
const badCredentialsMessage = "Provided username or password is incorrect"

// RegisterRequest carries the fields for a new user
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`                  // Display name must be provided
	Email    string `json:"email" binding:"required,email"`           // Unique, email-shaped
	Password string `json:"password" binding:"required,min=8,max=20"` // Password must be 8-20 characters
}

// LoginRequest carries login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// UpdateUserRequest carries the fields a user may change about themselves
type UpdateUserRequest struct {
	Name     string `json:"name"`     // New display name, empty keeps the old one
	Password string `json:"password"` // New plaintext password, empty keeps the old hash
}

// UserResponse is the public projection of a user; the password hash
// never leaves the server
type UserResponse struct {
	ID    uint   `json:"id"`    // User ID
	Name  string `json:"name"`  // Display name
	Email string `json:"email"` // Email address
}

// ListUsersHandler returns all users ordered by id, public fields only
func ListUsersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []domain.User
		// Project only the public-safe columns
		if err := db.Select("id", "name", "email").Order("id ASC").Find(&users).Error; err != nil {
			logrus.WithFields(logrus.Fields{"error": err.Error()}).Error("Failed to list users")
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		// Map users to the public response shape
		resp := make([]UserResponse, len(users))
		for i, u := range users {
			resp[i] = UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
		}
		c.JSON(http.StatusOK, resp) // Return the list, possibly empty
	}
}

// GetUserHandler returns a single user with their captions, served
// through the user cache
func GetUserHandler(db *gorm.DB, users *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.Param("id")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		ctx := context.Background() // Context for Redis operations
		var user domain.User
		// Read through the cache, loading captions eagerly on a miss.
		// The password field carries json:"-" so the cached copy and the
		// response both exclude the hash.
		err = users.Fetch(ctx, idStr, &user, func() (any, error) {
			var u domain.User
			if err := db.Preload("Captions").First(&u, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, nil // Missing row is not an error, just no value
				}
				return nil, err
			}
			return &u, nil
		})
		if errors.Is(err, cache.ErrNoValue) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Requested user not found"})
			return
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{"user_id": id, "error": err.Error()}).Error("Failed to fetch user")
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		c.JSON(http.StatusOK, user) // Return user with captions
	}
}

// RegisterHandler creates a new user with a hashed password
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		// Hash the password before it is stored
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			logrus.WithFields(logrus.Fields{"error": err.Error()}).Error("Failed to hash password")
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		user := domain.User{Name: req.Name, Email: req.Email, Password: string(hash)}
		// Attempt to create the user; a duplicate email violates the
		// unique constraint and surfaces here
		if err := db.Create(&user).Error; err != nil {
			logrus.WithFields(logrus.Fields{"email": req.Email, "error": err.Error()}).Error("Failed to create user")
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		// Return only the public fields, never the hash
		c.JSON(http.StatusCreated, UserResponse{ID: user.ID, Name: user.Name, Email: user.Email})
	}
}

// LoginHandler authenticates a user and returns a signed token. The token
// is also surfaced via the authorization response header.
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		var user domain.User // Look the user up by email
		if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
			// Unknown email is a 400, not a 404
			c.JSON(http.StatusBadRequest, gin.H{"message": badCredentialsMessage})
			return
		}
		// Compare provided password with the stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": badCredentialsMessage})
			return
		}
		// Generate the signed token, valid for 1 hour
		token, err := utils.GenerateJWT(user.ID, user.Email, jwtSecret)
		if err != nil {
			logrus.WithFields(logrus.Fields{"user_id": user.ID, "error": err.Error()}).Error("Failed to generate token")
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		c.Header("authorization", token) // Token also travels in the response header
		c.JSON(http.StatusOK, gin.H{
			"id":    user.ID,    // User ID
			"name":  user.Name,  // Display name
			"email": user.Email, // Email address
			"token": token,      // Signed token
		})
	}
}

// UpdateUserHandler lets a user change their own name and/or password.
// The ownership check runs before the load, so a mismatched id is a 403
// even when the target user does not exist.
func UpdateUserHandler(db *gorm.DB, users *cache.Cache) gin.HandlerFunc {
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
		// Only the owning user may update this record
		if authID.(uint) != uint(id) {
			c.JSON(http.StatusForbidden, gin.H{"message": "Authorization lacking/not sufficient to update this user"})
			return
		}
		var req UpdateUserRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		var user domain.User // Load the target row
		if err := db.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "Requested user not found"})
				return
			}
			logrus.WithFields(logrus.Fields{"user_id": id, "error": err.Error()}).Error("Failed to load user")
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		// Apply only the provided fields
		if req.Name != "" {
			user.Name = req.Name
		}
		if req.Password != "" {
			// A new password is re-hashed before storage
			hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
			if err != nil {
				logrus.WithFields(logrus.Fields{"user_id": id, "error": err.Error()}).Error("Failed to hash password")
				c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
				return
			}
			user.Password = string(hash)
		}
		if err := db.Save(&user).Error; err != nil {
			logrus.WithFields(logrus.Fields{"user_id": id, "error": err.Error()}).Error("Failed to update user")
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		// Invalidate the cached entry so the next read sees the new state
		_ = users.Delete(context.Background(), idStr)
		c.JSON(http.StatusOK, UserResponse{ID: user.ID, Name: user.Name, Email: user.Email})
	}
}

// DeleteUserHandler removes a user's own account. Their captions are left
// in place.
func DeleteUserHandler(db *gorm.DB, users *cache.Cache) gin.HandlerFunc {
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
		// Only the owning user may delete this record
		if authID.(uint) != uint(id) {
			c.JSON(http.StatusForbidden, gin.H{"message": "Authorization lacking/not sufficient to update this user"})
			return
		}
		var user domain.User // Load the target row
		if err := db.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Delete of a missing row is a 400, not a 404
				c.JSON(http.StatusBadRequest, gin.H{"message": "Requested user not found"})
				return
			}
			logrus.WithFields(logrus.Fields{"user_id": id, "error": err.Error()}).Error("Failed to load user")
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		if err := db.Delete(&user).Error; err != nil {
			logrus.WithFields(logrus.Fields{"user_id": id, "error": err.Error()}).Error("Failed to delete user")
			c.JSON(http.StatusBadRequest, gin.H{"message": txErrorMessage})
			return
		}
		// Invalidate the cached entry after the destroy
		_ = users.Delete(context.Background(), idStr)
		c.Status(http.StatusNoContent) // Empty body on success
	}
}
