package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"school-equipment-lending-system/db"
	"school-equipment-lending-system/models"
)

// BootstrapFirstAdmin seeds an admin account on an empty database so the
// one-time-code flow has someone to log in. No-op once any user exists.
func BootstrapFirstAdmin(ctx context.Context, cfg Config, repo *db.Repo) {
	if cfg.BootstrapEmail == "" {
		return
	}
	n, err := repo.CountUsers(ctx)
	if err != nil {
		logrus.Warnf("bootstrap: count users: %v", err)
		return
	}
	if n > 0 {
		return
	}
	admin := &models.User{
		Name:  cfg.BootstrapName,
		Email: cfg.BootstrapEmail,
		Role:  models.RoleAdmin,
	}
	if err := repo.CreateUser(ctx, admin); err != nil {
		logrus.Warnf("bootstrap: create admin: %v", err)
		return
	}
	logrus.WithFields(logrus.Fields{"userId": admin.ID, "email": admin.Email}).
		Info("bootstrap admin created; request a one-time code for this user to log in")
}
