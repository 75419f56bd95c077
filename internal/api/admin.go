package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"artspace/internal/db"         // Store operations
	"artspace/internal/domain"     // Importing domain models
	"artspace/internal/middleware" // Current user lookup
	"artspace/internal/storage"    // Asset store
	"artspace/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// ListUsersHandler returns every account without passwords
func ListUsersHandler(gdb *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var cached []UserResponse
		// If cached data found, return it
		if found, err := utils.GetCache(ctx, rdb, utils.CacheKeyUsers, &cached); err == nil && found {
			c.JSON(http.StatusOK, cached)
			return
		}
		var users []domain.User // Slice to hold users
		if err := gdb.Order("id asc").Find(&users).Error; err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to list users")
			fail(c, http.StatusInternalServerError, "")
			return
		}
		resp := make([]UserResponse, len(users))
		// Map users to response format
		for i := range users {
			resp[i] = newUserResponse(&users[i])
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, utils.CacheKeyUsers, resp, utils.CacheTTL)
		c.JSON(http.StatusOK, resp)
	}
}

// EmailRequest names the account to delete
type EmailRequest struct {
	Email string `json:"email" binding:"required"`
}

// DeleteUserHandler deletes the account with the given email.
// Admins may delete any account, members only their own; the seed admin is kept.
// Both /api/delete_account and /api/delete_user are served by this handler.
func DeleteUserHandler(gdb *gorm.DB, rdb *redis.Client, adminEmail string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := middleware.CurrentUser(c)
		if !ok {
			fail(c, http.StatusUnauthorized, "")
			return
		}
		var req EmailRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, utils.FormatValidationError(err))
			return
		}
		email := strings.TrimSpace(req.Email)
		if !caller.IsAdmin() && caller.Email != email {
			fail(c, http.StatusForbidden, "cannot delete another account")
			return
		}
		err := db.DeleteUserByEmail(gdb, email, adminEmail)
		switch {
		case errors.Is(err, db.ErrNotFound):
			fail(c, http.StatusNotFound, "")
			return
		case errors.Is(err, db.ErrProtectedAccount):
			fail(c, http.StatusForbidden, err.Error())
			return
		case err != nil:
			logrus.WithFields(logrus.Fields{
				"email": email,       // Target account
				"error": err.Error(), // Error message
			}).Error("Delete user failed")
			fail(c, http.StatusInternalServerError, "")
			return
		}
		logrus.WithFields(logrus.Fields{
			"email": email,        // Deleted account
			"by":    caller.Email, // Requesting account
		}).Info("User deleted")
		invalidate(c.Request.Context(), rdb, utils.CacheKeyUsers)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// ResetHandler wipes all artworks and users and re-creates the seed admin
func ResetHandler(gdb *gorm.DB, assets storage.AssetStore, rdb *redis.Client, seed db.AdminSeed) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := db.Reset(gdb, seed)
		if err != nil {
			logrus.WithField("error", err.Error()).Error("Reset failed")
			fail(c, http.StatusInternalServerError, "")
			return
		}
		// Files of the cleared rows are no longer referenced
		for _, name := range result.ImageFiles {
			removeAsset(c, assets, storage.FolderArtworks, name)
		}
		for _, name := range result.SlipFiles {
			removeAsset(c, assets, storage.FolderSlips, name)
		}
		logrus.WithFields(logrus.Fields{
			"artworks_deleted": result.ArtworksDeleted, // Cleared artworks
			"users_deleted":    result.UsersDeleted,    // Cleared accounts
		}).Warn("System reset")
		invalidate(c.Request.Context(), rdb, utils.CacheKeyArtworks, utils.CacheKeyUsers)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
