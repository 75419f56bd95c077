package middleware

import (
	"net/http" // HTTP status codes

	"artspace/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// CurrentUserMiddleware loads the token's user from the database on each request,
// so deleted accounts and role changes take effect immediately
func CurrentUserMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := loadUser(c, db); ok {
			c.Next()
		}
	}
}

// AdminOnlyMiddleware checks the user's role from the database on each request
func AdminOnlyMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := loadUser(c, db)
		if !ok {
			return
		}
		// Check if user role is admin
		if !user.IsAdmin() {
			// If not admin, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Admin access required"})
			return
		}
		// If admin, proceed to the next handler
		c.Next()
	}
}

// CurrentUser returns the user stored by CurrentUserMiddleware or AdminOnlyMiddleware
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, exists := c.Get(ContextUser)
	if !exists {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}

func loadUser(c *gin.Context, db *gorm.DB) (*domain.User, bool) {
	userID, exists := c.Get(ContextUserID) // Get userID from context
	// Check if userID exists in context
	if !exists {
		// If not, abort with unauthorized status
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return nil, false
	}
	var user domain.User // Fetch user from database
	if err := db.First(&user, userID).Error; err != nil {
		// Account gone or lookup failed, the token no longer identifies anyone
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return nil, false
	}
	c.Set(ContextUser, &user)
	return &user, true
}
