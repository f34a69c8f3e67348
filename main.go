package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"school-equipment-lending-system/app"
	"school-equipment-lending-system/db"
	"school-equipment-lending-system/routes"
)

func main() {
	application := app.MustNew()
	defer application.Close()

	app.BootstrapFirstAdmin(context.Background(), application.Config, db.NewRepo(application.DB))

	r := application.Router
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })
	routes.RegisterRoutes(r, application)

	port := application.Config.Port
	logrus.Infof("listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		logrus.Fatalf("server: %v", err)
	}
}
