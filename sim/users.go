package sim

import (
	"fmt"
	"time"

	"school-equipment-lending-system/models"
	"school-equipment-lending-system/store"
)

// Users is the simulated user directory. The demo pair mirrors the two
// accounts the prototype ships with.
type Users struct {
	kv  store.KV
	now func() time.Time
}

func NewUsers(kv store.KV) *Users {
	return &Users{kv: kv, now: time.Now}
}

type UserPatch struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Role  *string `json:"role,omitempty"`
}

func (u *Users) load() ([]models.User, error) {
	var out []models.User
	if _, err := readBlob(u.kv, store.KeyUsers, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (u *Users) Get(id int) (models.User, error) {
	users, err := u.load()
	if err != nil {
		return models.User{}, err
	}
	for _, usr := range users {
		if usr.ID == id {
			return usr, nil
		}
	}
	return models.User{}, fmt.Errorf("user %d: %w", id, models.ErrNotFound)
}

// Update merges the patch into the stored user and, when the current session
// belongs to that user, refreshes the session snapshot as well.
func (u *Users) Update(id int, p UserPatch) (models.User, error) {
	users, err := u.load()
	if err != nil {
		return models.User{}, err
	}
	for i := range users {
		if users[i].ID != id {
			continue
		}
		if p.Name != nil {
			users[i].Name = *p.Name
		}
		if p.Email != nil {
			users[i].Email = *p.Email
		}
		if p.Role != nil {
			users[i].Role = *p.Role
		}
		users[i].UpdatedAt = u.now()
		if err := writeBlob(u.kv, store.KeyUsers, users); err != nil {
			return models.User{}, err
		}
		u.refreshSession(users[i])
		return users[i], nil
	}
	return models.User{}, fmt.Errorf("user %d: %w", id, models.ErrNotFound)
}

// Delete removes the user and, when it is the signed-in user, clears the
// session so a stale token cannot outlive the account.
func (u *Users) Delete(id int) error {
	users, err := u.load()
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].ID == id {
			users = append(users[:i], users[i+1:]...)
			if err := writeBlob(u.kv, store.KeyUsers, users); err != nil {
				return err
			}
			var sess Session
			if ok, _ := readBlob(u.kv, store.KeySession, &sess); ok && sess.User.ID == id {
				_ = u.kv.Delete(store.KeySession)
			}
			return nil
		}
	}
	return fmt.Errorf("user %d: %w", id, models.ErrNotFound)
}

func (u *Users) refreshSession(usr models.User) {
	var sess Session
	if ok, _ := readBlob(u.kv, store.KeySession, &sess); ok && sess.User.ID == usr.ID {
		sess.User = usr
		_ = writeBlob(u.kv, store.KeySession, sess)
	}
}

// Seed installs the demo borrower and admin when the directory is empty.
func (u *Users) Seed() error {
	users, err := u.load()
	if err != nil || len(users) > 0 {
		return err
	}
	now := u.now()
	users = []models.User{
		{ID: 1, Name: "Demo User", Email: "demo@example.com", Role: models.RoleBorrower, CreatedAt: now, UpdatedAt: now},
		{ID: 2, Name: "Admin User", Email: "admin@example.com", Role: models.RoleAdmin, CreatedAt: now, UpdatedAt: now},
	}
	return writeBlob(u.kv, store.KeyUsers, users)
}
