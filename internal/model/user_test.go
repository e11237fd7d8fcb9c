package model

import "testing"

func TestUser_FullName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		user User
		want string
	}{
		{"first and last", User{FirstName: "Jimi", LastName: "Hendrix"}, "Jimi Hendrix"},
		{"first only", User{FirstName: "Jimi"}, "Jimi"},
		{"falls back to name", User{Name: "John"}, "John"},
		{"empty", User{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.user.FullName(); got != tt.want {
				t.Errorf("FullName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUser_IsAdmin(t *testing.T) {
	t.Parallel()

	if (&User{}).IsAdmin() {
		t.Error("zero user should not be admin")
	}
	if !(&User{Admin: true}).IsAdmin() {
		t.Error("expected admin")
	}
}
