package app

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"school-equipment-lending-system/db"
	"school-equipment-lending-system/session"
)

// Shorthand for handlers.
type Ctx = gin.Context
type H = gin.H

// App aggregates the service dependencies.
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Config Config

	sessions *session.Store
	otp      *session.OTPStore
}

type Config struct {
	Port       string
	RedisAddr  string
	RedisPwd   string
	WebOrigin  string
	JWTSecret  string
	SessionTTL time.Duration
	OTPTTL     time.Duration

	// BootstrapEmail seeds the first admin account on an empty database.
	BootstrapEmail string
	BootstrapName  string
}

func (a *App) Sessions() *session.Store { return a.sessions }
func (a *App) Codes() *session.OTPStore { return a.otp }

func MustNew() *App {
	// Missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()
	cfg := loadConfig()

	dbConn := db.ConnectDB()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logrus.Fatalf("redis: %v", err)
	}

	session.InitJWT(cfg.JWTSecret)

	r := gin.Default()
	useCORS(r, cfg.WebOrigin)

	return &App{
		Router:   r,
		DB:       dbConn,
		RDB:      rdb,
		Config:   cfg,
		sessions: session.NewStore(rdb, cfg.SessionTTL),
		otp:      session.NewOTPStore(rdb, cfg.OTPTTL),
	}
}

func (a *App) Close() { _ = a.RDB.Close() }

func loadConfig() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}
	seconds := func(k string, def time.Duration) time.Duration {
		if n, err := strconv.Atoi(os.Getenv(k)); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
		return def
	}
	return Config{
		Port:           get("PORT", "8080"),
		RedisAddr:      get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:       os.Getenv("REDIS_PASSWORD"),
		WebOrigin:      get("WEB_ORIGIN", "http://localhost:5173"),
		JWTSecret:      get("JWT_SECRET", "dev-only-secret"),
		SessionTTL:     seconds("SESSION_TTL_SECONDS", 24*time.Hour),
		OTPTTL:         seconds("OTP_TTL_SECONDS", 10*time.Minute),
		BootstrapEmail: os.Getenv("BOOTSTRAP_ADMIN_EMAIL"),
		BootstrapName:  get("BOOTSTRAP_ADMIN_NAME", "Administrator"),
	}
}
