package models

// User roles
const (
	RoleCustomer   = "customer"
	RoleOperator   = "operator"
	RoleCollector1 = "collector1"
	RoleCollector2 = "collector2"
	RoleCollector3 = "collector3"
)

type User struct {
	ID        string `json:"id" db:"id"`
	Email     string `json:"email" db:"email"`
	Password  string `json:"-" db:"password"` // Never return password in JSON
	Name      string `json:"name" db:"name"`
	Role      string `json:"role" db:"role"`
	Address   string `json:"address" db:"address"`
	Active    bool   `json:"active" db:"active"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
	UpdatedAt int64  `json:"updated_at" db:"updated_at"`
}

type UserResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Address string `json:"address"`
	Active  bool   `json:"active"`
}

// IsCollector reports whether a role is one of the collection tiers.
func IsCollector(role string) bool {
	switch role {
	case RoleCollector1, RoleCollector2, RoleCollector3:
		return true
	}
	return false
}

func (u *User) ToUserResponse() UserResponse {
	return UserResponse{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Role:    u.Role,
		Address: u.Address,
		Active:  u.Active,
	}
}
