package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"school-equipment-lending-system/app"
	"school-equipment-lending-system/controllers"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	s := controllers.GetSrv(a)
	authCtl := controllers.NewAuthController(s)
	userCtl := controllers.NewUserController(s)
	equipCtl := controllers.NewEquipmentController(s)
	reqCtl := controllers.NewRequestController(s)

	authMW := app.AuthRequired(s.Sessions)
	adminMW := app.AdminOnly()
	staffMW := app.StaffOnly()
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)

	// Login flow; the only unauthenticated surface besides /healthz.
	auth := r.Group("/auth")
	{
		auth.POST("/otp/send", authCtl.SendOTP)
		auth.POST("/otp/verify", authCtl.VerifyOTP)
		auth.POST("/logout", authMW, authCtl.Logout)
	}

	users := r.Group("/users", authMW, seenMW)
	{
		users.GET("/:id", userCtl.GetUser)
		users.PUT("/:id", userCtl.UpdateUser)
		users.GET("", adminMW, userCtl.ListUsers)
		users.POST("", adminMW, userCtl.CreateUser)
		users.DELETE("/:id", adminMW, userCtl.DeleteUser)
	}

	equipments := r.Group("/equipments", authMW, seenMW)
	{
		equipments.GET("", equipCtl.List)
		equipments.POST("", staffMW, equipCtl.Create)
		equipments.PUT("/:id", staffMW, equipCtl.Update)
		equipments.DELETE("/:id", staffMW, equipCtl.Delete)
	}

	requests := r.Group("/requests", authMW, seenMW)
	{
		requests.POST("", reqCtl.Create)
		requests.GET("/user", reqCtl.ListMine)
		requests.GET("/status/pending", adminMW, reqCtl.ListPending)
		requests.GET("/:id", reqCtl.Get)
		requests.GET("/audit", adminMW, reqCtl.Audit)
		requests.POST("/:id/approve", adminMW, reqCtl.Approve)
		requests.POST("/:id/reject", adminMW, reqCtl.Reject)
		requests.POST("/:id/return", reqCtl.Return)
	}
}
