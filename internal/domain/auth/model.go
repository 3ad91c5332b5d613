// Package auth provides account creation and credential verification.
package auth

// User is one account row. Usernames are unique case-insensitively but
// stored exactly as given at creation.
type User struct {
	Username string `db:"username"`
	Hash     []byte `db:"hash"`
	Salt     []byte `db:"salt"`
	Balance  int64  `db:"balance"`
}
