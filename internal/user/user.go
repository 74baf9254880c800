package user

// Role values are fixed at signup and never change afterwards: there is no
// role-change endpoint in the portal.
const (
	RoleFaculty = "faculty"
	RoleStudent = "student"
)

// DefaultProfileImage is served whenever an account has no avatar of its own.
const DefaultProfileImage = "/default-avatar.png"

type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	ProfileImage string `json:"profileImage"`
	CreatedAt    int64  `json:"created_at,omitempty"`
}

func ValidRole(role string) bool {
	return role == RoleFaculty || role == RoleStudent
}
