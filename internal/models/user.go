package models

// Role values gate every route. Admins curate the catalog and plans, write
// users execute assigned plans and submit catalog additions for approval,
// read users only view.
const (
	RoleAdmin = "admin"
	RoleWrite = "write"
	RoleRead  = "read"
)

// ValidRole reports whether role is one of the three known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleWrite || role == RoleRead
}

// User is an account row. Password holds the bcrypt hash and is never
// serialised into responses.
type User struct {
	EmpID    int    `bson:"emp_id" json:"emp_id"`
	Username string `bson:"username" json:"username"`
	Email    string `bson:"email" json:"email"`
	Role     string `bson:"role" json:"role"`
	Password string `bson:"password" json:"-"`
}

// Claims is the decoded JWT payload attached to authenticated requests.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Email    string `json:"email"`
}
