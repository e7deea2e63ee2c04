package authService

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tuanvm/investfolio/config"
	"github.com/tuanvm/investfolio/data/repository"
	"github.com/tuanvm/investfolio/internal/model"
	"github.com/tuanvm/investfolio/internal/service"
)

type fakeRepo struct {
	users  map[int64]model.User
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[int64]model.User), nextID: 1}
}

func (r *fakeRepo) InsertUser(_ context.Context, username, passwordHash, displayName, email string) (int64, error) {
	for _, user := range r.users {
		if user.Username == username {
			return 0, repository.ErrAlreadyExists
		}
	}
	userID := r.nextID
	r.nextID++
	r.users[userID] = model.User{UserID: userID, Username: username, PasswordHash: passwordHash, DisplayName: displayName, Email: email}
	return userID, nil
}

func (r *fakeRepo) GetUserByUsername(_ context.Context, username string) (model.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (r *fakeRepo) GetUserByID(_ context.Context, userID int64) (model.User, error) {
	user, ok := r.users[userID]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (r *fakeRepo) UpdateUserPassword(_ context.Context, userID int64, passwordHash string) error {
	user, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = passwordHash
	r.users[userID] = user
	return nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Expiration = time.Hour
	return cfg
}

func TestRegisterAndLogin(t *testing.T) {
	srv := New(testConfig(), newFakeRepo())
	ctx := context.Background()

	registered, err := srv.Register(ctx, "tuan", "secret123", "Tuan", "tuan@example.com")
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if registered.Token == "" {
		t.Fatal("Register() returned an empty token")
	}

	loggedIn, err := srv.Login(ctx, "tuan", "secret123")
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	if loggedIn.User.UserID != registered.User.UserID {
		t.Errorf("login userID = %d, want %d", loggedIn.User.UserID, registered.User.UserID)
	}

	userID, err := srv.ParseToken(loggedIn.Token)
	if err != nil {
		t.Fatalf("ParseToken() failed: %v", err)
	}
	if userID != registered.User.UserID {
		t.Errorf("token userID = %d, want %d", userID, registered.User.UserID)
	}
}

func TestRegister_Validation(t *testing.T) {
	srv := New(testConfig(), newFakeRepo())

	testCases := []struct {
		name     string
		username string
		password string
	}{
		{name: "empty username", username: "", password: "secret123"},
		{name: "short password", username: "tuan", password: "12345"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := srv.Register(context.Background(), tc.username, tc.password, "", "")
			if !errors.Is(err, service.ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	srv := New(testConfig(), newFakeRepo())
	ctx := context.Background()

	if _, err := srv.Register(ctx, "tuan", "secret123", "", ""); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	_, err := srv.Register(ctx, "tuan", "another123", "", "")
	if !errors.Is(err, service.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	srv := New(testConfig(), newFakeRepo())
	ctx := context.Background()

	if _, err := srv.Register(ctx, "tuan", "secret123", "", ""); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	_, err := srv.Login(ctx, "tuan", "wrong-password")
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials for wrong password", err)
	}

	_, err = srv.Login(ctx, "nobody", "secret123")
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials for unknown user", err)
	}
}

func TestParseToken_RejectsGarbageAndForeignSignature(t *testing.T) {
	srv := New(testConfig(), newFakeRepo())

	_, err := srv.ParseToken("not-a-token")
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}

	otherCfg := testConfig()
	otherCfg.JWT.Secret = "different-secret"
	other := New(otherCfg, newFakeRepo())
	result, err := other.Register(context.Background(), "tuan", "secret123", "", "")
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	_, err = srv.ParseToken(result.Token)
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials for foreign signature", err)
	}
}

func TestChangePassword(t *testing.T) {
	srv := New(testConfig(), newFakeRepo())
	ctx := context.Background()

	registered, err := srv.Register(ctx, "tuan", "secret123", "", "")
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	userID := registered.User.UserID

	if err := srv.ChangePassword(ctx, userID, "wrong", "newsecret"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}

	if err := srv.ChangePassword(ctx, userID, "secret123", "short"); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}

	if err := srv.ChangePassword(ctx, userID, "secret123", "newsecret"); err != nil {
		t.Fatalf("ChangePassword() failed: %v", err)
	}

	if _, err := srv.Login(ctx, "tuan", "newsecret"); err != nil {
		t.Fatalf("Login() with the new password failed: %v", err)
	}
	if _, err := srv.Login(ctx, "tuan", "secret123"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("old password still works: err = %v", err)
	}
}
