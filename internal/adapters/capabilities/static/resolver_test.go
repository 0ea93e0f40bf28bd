package static

import (
	"context"
	"errors"
	"testing"

	"adoptipet/internal/domain/users"
	"adoptipet/internal/ports/auth"
)

type roleMap map[string]users.Role

func (m roleMap) RoleOf(ctx context.Context, id string) (users.Role, error) {
	if id == "broken" {
		return "", errors.New("db down")
	}
	if r, ok := m[id]; ok {
		return r, nil
	}
	return users.RoleUser, nil
}

type fixed bool

func (f fixed) IsAdmin(context.Context, auth.Claims) (bool, error) { return bool(f), nil }

func TestResolver_IsAdmin(t *testing.T) {
	r := NewResolver([]string{" cfg-admin "}, roleMap{"stored-admin": users.RoleAdmin}, nil)

	cases := []struct {
		name   string
		claims auth.Claims
		want   bool
	}{
		{"token role", auth.Claims{UserID: "u1", Roles: []string{"Admin"}}, true},
		{"config list", auth.Claims{UserID: "cfg-admin"}, true},
		{"stored role", auth.Claims{UserID: "stored-admin"}, true},
		{"plain user", auth.Claims{UserID: "u2"}, false},
	}
	for _, tc := range cases {
		got, err := r.IsAdmin(context.Background(), tc.claims)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}

	if _, err := r.IsAdmin(context.Background(), auth.Claims{UserID: "broken"}); err == nil {
		t.Fatalf("expected lookup error to propagate")
	}
}

func TestResolver_Fallback(t *testing.T) {
	r := NewResolver(nil, nil, fixed(true))
	ok, err := r.IsAdmin(context.Background(), auth.Claims{UserID: "u1"})
	if err != nil || !ok {
		t.Fatalf("expected fallback admin, got %v %v", ok, err)
	}
}
