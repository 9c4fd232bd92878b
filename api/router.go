// Package api contains all endpoints available
package api

import (
	"fmt"
	"time"

	"secureshare/file-api/db"
	"secureshare/file-api/middleware"
	"secureshare/file-api/security"
	"secureshare/file-api/service"
	"secureshare/file-api/storage"

	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

type API struct {
	DB     *gorm.DB
	Router *gin.Engine
	Argon  *security.ArgonHash
	Vault  *storage.Vault
	Links  *service.LinkService
	Codes  *service.CodeService
	Access *service.AccessService
	Audit  *service.AuditService
	Mailer service.Notifier
}

func NewRouter() (*API, error) {
	a := &API{}

	db, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite database, %w", err)
	}
	a.DB = db

	makeLogger()

	a.Argon = security.New()

	vault, err := storage.NewVault(viper.GetString("storage.path"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vault, %w", err)
	}
	a.Vault = vault

	a.Mailer = service.NewMailer()
	a.Links = &service.LinkService{DB: db, Argon: a.Argon}
	a.Codes = &service.CodeService{DB: db}
	a.Audit = &service.AuditService{DB: db, Links: a.Links}
	a.Access = &service.AccessService{
		DB:     db,
		Argon:  a.Argon,
		Vault:  a.Vault,
		Links:  a.Links,
		Codes:  a.Codes,
		Audit:  a.Audit,
		Mailer: a.Mailer,
	}

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{viper.GetString("host.frontend_url")},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	a.Router.MaxMultipartMemory = 5 << 20

	jwt := middleware.NewJWTMiddleware(db)
	publicLimit := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: 2,
		Burst:             5,
	})
	maxUploadSize := viper.GetInt64("upload.max_size")

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)
	}

	auth := main.Group("/auth")
	{
		// POST /api/auth/register	-> Registers a new user
		auth.POST("/register", a.UserRegister)

		// POST /api/auth/login		-> Logs in a user and sets the auth cookie
		auth.POST("/login", a.UserLogin)

		// GET /api/auth/me		-> Returns the logged in user
		auth.GET("/me", jwt, a.UserMe)

		// POST /api/auth/forgot-password -> Mails a password reset code
		auth.POST("/forgot-password", publicLimit, a.ForgotPassword)

		// POST /api/auth/reset-password  -> Consumes the code and sets a new password
		auth.POST("/reset-password", publicLimit, a.ResetPassword)
	}

	files := main.Group("/files", jwt)
	{
		// POST /api/files		-> Uploads a real and a decoy file
		files.POST("", middleware.BodySizeLimiter(maxUploadSize), a.FileUpload)

		// GET /api/files		-> Lists the user's files
		files.GET("", a.FileList)

		// GET /api/files/:fileID/download -> Owner downloads their own real file
		files.GET("/:fileID/download", a.FileDownload)
	}

	share := main.Group("/share", jwt)
	{
		// POST /api/share/create	-> Creates a share link for an owned file
		share.POST("/create", a.ShareCreate)

		// GET /api/share/links		-> Lists the user's share links
		share.GET("/links", a.ShareList)
	}

	access := main.Group("/access")
	{
		// POST /api/access/request-code -> Asks the owner for a one-time code
		access.POST("/request-code", publicLimit, a.AccessRequestCode)

		// POST /api/access/verify	-> Presents code + password, receives a file
		access.POST("/verify", publicLimit, a.AccessVerify)

		// GET /api/access/attempts	-> Owner's audit trail, newest first
		access.GET("/attempts", jwt, a.AccessAttempts)
	}

	owner := main.Group("/owner", jwt)
	{
		// POST /api/owner/block	-> Blocks the link behind an attempt
		owner.POST("/block", a.OwnerBlock)
	}

	service.CodeCleanup(time.Hour, db)

	return a, nil
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
