package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"school-equipment-lending-system/app"
	"school-equipment-lending-system/models"
	"school-equipment-lending-system/session"
)

type AuthController struct{ *Srv }

func NewAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

// POST /auth/otp/send — identifies the account by userId or email.
// The code is delivered out of band; here that channel is the service log.
func (ac *AuthController) SendOTP(c *gin.Context) {
	var in struct {
		UserID int    `json:"userId"`
		Email  string `json:"email"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || (in.UserID <= 0 && in.Email == "") {
		c.JSON(http.StatusBadRequest, app.H{"error": "userId or email required"})
		return
	}
	var (
		user *models.User
		err  error
	)
	if in.UserID > 0 {
		user, err = ac.Repo.FindUserByID(c.Request.Context(), in.UserID)
	} else {
		user, err = ac.Repo.FindUserByEmail(c.Request.Context(), in.Email)
	}
	if err != nil {
		fail(c, err)
		return
	}
	code := randomCode()
	ttl, err := ac.Codes.Issue(c.Request.Context(), user.ID, code)
	if err != nil {
		fail(c, err)
		return
	}
	logrus.WithFields(logrus.Fields{"userId": user.ID, "code": code, "ttl": ttl}).
		Info("one-time code issued")
	c.JSON(http.StatusOK, app.H{"userId": user.ID, "ttl": int(ttl / time.Second)})
}

// POST /auth/otp/verify
func (ac *AuthController) VerifyOTP(c *gin.Context) {
	var in struct {
		UserID int    `json:"userId" binding:"required"`
		Code   string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := ac.Codes.Verify(c.Request.Context(), in.UserID, in.Code); err != nil {
		fail(c, err)
		return
	}
	user, err := ac.Repo.FindUserByID(c.Request.Context(), in.UserID)
	if err != nil {
		fail(c, err)
		return
	}

	expireAt := time.Now().Add(ac.Cfg.SessionTTL)
	token, err := session.GenerateToken(user.ID, user.Name, user.Role, expireAt, "equipment-lending")
	if err != nil {
		fail(c, err)
		return
	}
	if err := ac.Sessions.Create(c.Request.Context(), token, user.ID, user.Name, user.Role); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"token": token, "user": user})
}

// POST /auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	if tok := c.GetString("sessionToken"); tok != "" {
		_ = ac.Sessions.Delete(c.Request.Context(), tok)
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
