package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

type memUsers struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: make(map[string]*models.User)}
}

func (m *memUsers) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return storage.ErrConflict
	}
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byEmail[email], nil
}

func (m *memUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memUsers) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	out := make(map[string]*models.User)
	for _, id := range ids {
		if u, err := m.GetUserByID(ctx, id); err == nil {
			out[id] = u
		}
	}
	return out, nil
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(newMemUsers()).WithCost(bcrypt.MinCost)

	user, err := a.Register(ctx, "  Alice@Example.com ", "Alice", "password1")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email = %q, want normalized", user.Email)
	}
	if user.PasswordHash == "password1" {
		t.Error("password stored in clear text")
	}

	if _, err := a.Register(ctx, "alice@example.com", "Other", "password2"); !errors.Is(err, ErrEmailExists) {
		t.Errorf("duplicate Register error = %v, want ErrEmailExists", err)
	}
	if _, err := a.Register(ctx, "bob@example.com", "Bob", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("weak password error = %v, want ErrWeakPassword", err)
	}

	got, err := a.Authenticate(ctx, "ALICE@example.com", "password1")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("authenticated %s, want %s", got.ID, user.ID)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "alice@example.com", "password2"},
		{"unknown email", "nobody@example.com", "password1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.Authenticate(ctx, tt.email, tt.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := &models.User{ID: "user-1", Email: "a@example.com"}

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "a@example.com" {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := NewJWTManager("other-secret", time.Hour).Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret error = %v, want ErrInvalidToken", err)
	}
	if _, err := m.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage error = %v, want ErrInvalidToken", err)
	}

	m.Revoke(claims)
	if _, err := m.Validate(token); !errors.Is(err, ErrRevokedToken) {
		t.Errorf("revoked token error = %v, want ErrRevokedToken", err)
	}
}

func TestJWTManagerExpiry(t *testing.T) {
	m := NewJWTManager("test-secret", time.Minute)
	start := time.Now()
	m.now = func() time.Time { return start }

	token, err := m.Generate(&models.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	m.now = func() time.Time { return start.Add(2 * time.Minute) }
	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token error = %v, want ErrInvalidToken", err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr error
	}{
		{"Bearer abc", "abc", nil},
		{"bearer abc", "abc", nil},
		{"", "", ErrMissingToken},
		{"Basic abc", "", ErrInvalidToken},
		{"Bearer", "", ErrInvalidToken},
		{"Bearer  ", "", ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := BearerToken(tt.header)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("token = %q, want %q", got, tt.want)
			}
		})
	}
}
