package operator

// Operator is the account allowed to browse split history.
type Operator struct {
	Email        string
	Name         string
	PasswordHash string
}
