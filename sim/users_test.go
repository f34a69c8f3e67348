package sim

import (
	"errors"
	"testing"

	"school-equipment-lending-system/models"
	"school-equipment-lending-system/store"
)

func TestUsers_UpdateRefreshesSession(t *testing.T) {
	a, users, _ := newAuth(t)
	code := issuedCode(a)
	if _, err := a.IssueCode(1); err != nil {
		t.Fatalf("IssueCode() failed: %v", err)
	}
	if _, err := a.VerifyCode(1, *code); err != nil {
		t.Fatalf("VerifyCode() failed: %v", err)
	}

	got, err := users.Update(1, UserPatch{Name: strp("Renamed User")})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if got.Name != "Renamed User" {
		t.Errorf("name = %q", got.Name)
	}
	sess, ok, _ := a.Current()
	if !ok || sess.User.Name != "Renamed User" {
		t.Errorf("session snapshot not refreshed: %+v", sess.User)
	}
}

func TestUsers_DeleteClearsOwnSession(t *testing.T) {
	a, users, _ := newAuth(t)
	code := issuedCode(a)
	if _, err := a.IssueCode(1); err != nil {
		t.Fatalf("IssueCode() failed: %v", err)
	}
	if _, err := a.VerifyCode(1, *code); err != nil {
		t.Fatalf("VerifyCode() failed: %v", err)
	}

	if err := users.Delete(1); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, ok, _ := a.Current(); ok {
		t.Error("session survived account deletion")
	}
	if _, err := users.Get(1); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Get() after delete: err = %v, want ErrNotFound", err)
	}
}

func TestUsers_SeedDemoPair(t *testing.T) {
	kv := store.NewMemory()
	users := NewUsers(kv)
	if err := users.Seed(); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}
	borrower, err := users.Get(1)
	if err != nil || borrower.Role != models.RoleBorrower {
		t.Errorf("user 1 = %+v, err %v", borrower, err)
	}
	admin, err := users.Get(2)
	if err != nil || admin.Role != models.RoleAdmin {
		t.Errorf("user 2 = %+v, err %v", admin, err)
	}
}
