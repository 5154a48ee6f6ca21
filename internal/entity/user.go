package entity

// Operator is the admin identity carried by a verified bearer token.
type Operator struct {
	ID    string
	Email string
	Role  string
}

const RoleAdmin = "admin"
