package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"flightbook/internal/core/apperror"
	"flightbook/internal/core/tx"
)

type stubManager struct{}

func (m *stubManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *stubManager) RunWithRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *stubManager) OpenTransactions() int32 { return 0 }

// memUsers is an in-memory Repository keyed by lowercased username, matching
// the store's case-insensitive lookups.
type memUsers struct {
	users     map[string]*User
	createErr error
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]*User)}
}

func (r *memUsers) Exists(ctx context.Context, username string) (bool, error) {
	_, ok := r.users[strings.ToLower(username)]
	return ok, nil
}

func (r *memUsers) Create(ctx context.Context, u *User) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.users[strings.ToLower(u.Username)] = u
	return nil
}

func (r *memUsers) Get(ctx context.Context, username string) (*User, error) {
	u, ok := r.users[strings.ToLower(username)]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (r *memUsers) Balance(ctx context.Context, username string) (int64, error) {
	u, err := r.Get(ctx, username)
	if err != nil {
		return 0, err
	}
	return u.Balance, nil
}

func (r *memUsers) SetBalance(ctx context.Context, username string, balance int64) error {
	u, err := r.Get(ctx, username)
	if err != nil {
		return err
	}
	u.Balance = balance
	return nil
}

func testContext() context.Context {
	return tx.WithManager(context.Background(), &stubManager{})
}

func TestCreateAccountAndLogin(t *testing.T) {
	users := newMemUsers()
	svc := NewService(users)
	ctx := testContext()

	if err := svc.CreateAccount(ctx, "Alice", "hunter2", 1000); err != nil {
		t.Fatalf("create: %v", err)
	}

	u, err := users.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("stored user not found: %v", err)
	}
	if u.Username != "Alice" {
		t.Errorf("username stored as %q, want original casing", u.Username)
	}
	if u.Balance != 1000 {
		t.Errorf("balance = %d, want 1000", u.Balance)
	}
	if len(u.Salt) != saltBytes || len(u.Hash) != keyBytes {
		t.Errorf("salt/hash lengths = %d/%d", len(u.Salt), len(u.Hash))
	}

	if err := svc.VerifyLogin(ctx, "Alice", "hunter2"); err != nil {
		t.Errorf("login with correct password: %v", err)
	}
	// Usernames are case-insensitive on lookup.
	if err := svc.VerifyLogin(ctx, "ALICE", "hunter2"); err != nil {
		t.Errorf("login with different casing: %v", err)
	}
}

func TestCreateAccountRejectsDuplicate(t *testing.T) {
	users := newMemUsers()
	svc := NewService(users)
	ctx := testContext()

	if err := svc.CreateAccount(ctx, "bob", "pw", 0); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err := svc.CreateAccount(ctx, "BOB", "other", 50)
	if !apperror.IsCode(err, apperror.CodeCreateUserFailed) {
		t.Fatalf("duplicate create error = %v, want CREATE_USER_FAILED", err)
	}
}

func TestCreateAccountValidation(t *testing.T) {
	users := newMemUsers()
	svc := NewService(users)
	ctx := testContext()

	tests := []struct {
		name     string
		username string
		password string
		balance  int64
	}{
		{"empty username", "", "pw", 0},
		{"empty password", "carol", "", 0},
		{"negative balance", "carol", "pw", -1},
	}
	for _, tt := range tests {
		err := svc.CreateAccount(ctx, tt.username, tt.password, tt.balance)
		if !apperror.IsCode(err, apperror.CodeCreateUserFailed) {
			t.Errorf("%s: error = %v, want CREATE_USER_FAILED", tt.name, err)
		}
	}
	if len(users.users) != 0 {
		t.Errorf("store should be untouched, has %d users", len(users.users))
	}
}

func TestCreateAccountCollapsesStoreErrors(t *testing.T) {
	users := newMemUsers()
	users.createErr = errors.New("insert failed")
	svc := NewService(users)

	err := svc.CreateAccount(testContext(), "dave", "pw", 10)
	if !apperror.IsCode(err, apperror.CodeCreateUserFailed) {
		t.Fatalf("error = %v, want CREATE_USER_FAILED", err)
	}
}

func TestVerifyLoginFailures(t *testing.T) {
	users := newMemUsers()
	svc := NewService(users)
	ctx := testContext()

	if err := svc.CreateAccount(ctx, "erin", "correct", 0); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Unknown users and wrong passwords must be indistinguishable.
	for _, tt := range []struct {
		name     string
		username string
		password string
	}{
		{"unknown user", "nobody", "correct"},
		{"wrong password", "erin", "incorrect"},
	} {
		err := svc.VerifyLogin(ctx, tt.username, tt.password)
		if !apperror.IsCode(err, apperror.CodeLoginFailed) {
			t.Errorf("%s: error = %v, want LOGIN_FAILED", tt.name, err)
		}
	}
}

func TestDeriveKeyIsDeterministic(t *testing.T) {
	salt, err := newSalt()
	if err != nil {
		t.Fatal(err)
	}
	a := deriveKey("secret", salt)
	b := deriveKey("secret", salt)
	if string(a) != string(b) {
		t.Error("same password and salt derived different keys")
	}

	other, err := newSalt()
	if err != nil {
		t.Fatal(err)
	}
	if string(a) == string(deriveKey("secret", other)) {
		t.Error("different salts derived the same key")
	}
}
