package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"artspace/internal/db"     // Store operations
	"artspace/internal/domain" // Importing domain models
	"artspace/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"golang.org/x/crypto/bcrypt"   // Password hashing
	"gorm.io/gorm"                 // GORM ORM library
)

// RegisterRequest is the registration payload
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`     // Display name must be provided
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// UserResponse is the public view of an account, never carrying the password
type UserResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{Name: u.Name, Email: u.Email, Role: u.Role}
}

// RegisterHandler creates a member account
func RegisterHandler(gdb *gorm.DB, rdb *redis.Client, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, utils.FormatValidationError(err))
			return
		}
		req.Email = strings.TrimSpace(req.Email)
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			fail(c, http.StatusInternalServerError, "")
			return
		}
		user := domain.User{Name: req.Name, Email: req.Email, Password: string(hash), Role: domain.RoleMember}
		if err := db.CreateUser(gdb, &user); err != nil {
			if errors.Is(err, db.ErrDuplicateEmail) {
				fail(c, http.StatusConflict, MsgDuplicateEmail)
				return
			}
			logrus.WithFields(logrus.Fields{
				"email": req.Email,   // Account email
				"error": err.Error(), // Error message
			}).Error("Failed to create user")
			fail(c, http.StatusInternalServerError, "")
			return
		}
		token, err := utils.GenerateJWT(user.ID, user.Email, jwtSecret)
		if err != nil {
			fail(c, http.StatusInternalServerError, "")
			return
		}
		logrus.WithField("email", user.Email).Info("User registered")
		invalidate(c.Request.Context(), rdb, utils.CacheKeyUsers)
		c.JSON(http.StatusCreated, gin.H{"success": true, "user": newUserResponse(&user), "token": token})
	}
}

// LoginHandler authenticates a user and returns a session token.
// Logging in with adminEmail always leaves that account with the admin role.
func LoginHandler(gdb *gorm.DB, rdb *redis.Client, jwtSecret, adminEmail string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "")
			return
		}
		var user domain.User // Fetch user from database
		if err := gdb.Where("email = ?", strings.TrimSpace(req.Email)).First(&user).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				logrus.WithField("error", err.Error()).Error("Login lookup failed")
			}
			fail(c, http.StatusUnauthorized, "") // Same answer for unknown email and wrong password
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			fail(c, http.StatusUnauthorized, "")
			return
		}
		if user.Email == adminEmail && !user.IsAdmin() {
			if err := gdb.Model(&user).Update("role", domain.RoleAdmin).Error; err != nil {
				logrus.WithField("error", err.Error()).Error("Failed to restore admin role")
				fail(c, http.StatusInternalServerError, "")
				return
			}
			user.Role = domain.RoleAdmin
			logrus.WithField("email", user.Email).Info("Admin role restored on login")
			invalidate(c.Request.Context(), rdb, utils.CacheKeyUsers)
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, user.Email, jwtSecret)
		if err != nil {
			fail(c, http.StatusInternalServerError, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "user": newUserResponse(&user), "token": token})
	}
}
