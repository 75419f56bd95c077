package domain

// Role values stored on User.Role
const (
	RoleMember = "member" // Default role on registration
	RoleAdmin  = "admin"  // Seed admin role
)

// User Model
type User struct {
	ID       uint   `gorm:"primaryKey"`                    // Primary key
	Name     string `gorm:"size:100;not null"`             // Display name
	Email    string `gorm:"size:100;uniqueIndex;not null"` // Unique email, identifies the account
	Password string `gorm:"size:100;not null"`             // Bcrypt hash
	Role     string `gorm:"size:20;default:member"`        // Role: member or admin
}

// IsAdmin reports whether the stored role is admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
