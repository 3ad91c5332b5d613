package dto

// CreateUserRequest registers a new account with an initial balance.
// InitialBalance is a pointer so zero and absent are distinguishable.
type CreateUserRequest struct {
	Username       string `json:"username" binding:"required"`
	Password       string `json:"password" binding:"required"`
	InitialBalance *int64 `json:"initial_balance" binding:"required"`
}
