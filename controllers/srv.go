package controllers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"

	"github.com/gin-gonic/gin"

	"school-equipment-lending-system/app"
	"school-equipment-lending-system/db"
	"school-equipment-lending-system/models"
	"school-equipment-lending-system/session"
)

type Srv struct {
	Repo     *db.Repo
	Sessions *session.Store
	Codes    *session.OTPStore
	Cfg      app.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:     db.NewRepo(a.DB),
		Sessions: a.Sessions(),
		Codes:    a.Codes(),
		Cfg:      a.Config,
	}
}

// fail translates the error taxonomy into HTTP statuses. Raw storage errors
// never reach the caller.
func fail(c *gin.Context, err error) {
	switch {
	case db.IsNotFound(err):
		c.JSON(http.StatusNotFound, app.H{"error": "not found"})
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, db.ErrInsufficientStock),
		errors.Is(err, db.ErrBadTransition),
		errors.Is(err, db.ErrNotOwner),
		errors.Is(err, db.ErrHasOpenRequests):
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
	case errors.Is(err, db.ErrVersionConflict):
		c.JSON(http.StatusConflict, app.H{"error": err.Error()})
	case errors.Is(err, models.ErrCodeExpired):
		c.JSON(http.StatusGone, app.H{"error": "one-time code expired"})
	case errors.Is(err, models.ErrCodeMismatch):
		c.JSON(http.StatusUnauthorized, app.H{"error": "one-time code mismatch"})
	default:
		c.JSON(http.StatusInternalServerError, app.H{"error": "operation failed"})
	}
}

func actorFrom(c *gin.Context) db.Actor {
	return db.Actor{ID: app.UserID(c), Name: c.GetString("userName")}
}

// randomCode returns a 4-digit one-time code, 1000-9999.
func randomCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "0000"
	}
	return fmt.Sprintf("%d", 1000+n.Int64())
}
