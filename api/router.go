// Package api contains all endpoints available
package api

import (
	"bitwise74/fileshare-api/chain"
	"bitwise74/fileshare-api/db"
	"bitwise74/fileshare-api/middleware"
	"bitwise74/fileshare-api/security"
	"fmt"
	"time"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var store = persist.NewMemoryStore(time.Minute)

type API struct {
	DB     *gorm.DB
	Router *gin.Engine
	Argon  *security.ArgonHash
	Chain  chain.Store
	Keys   *security.KeyWrap
}

func NewRouter() (*API, error) {
	a := &API{}

	db, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	a.DB = db

	makeLogger()

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
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
	router.RedirectFixedPath = true
	a.Router.MaxMultipartMemory = 5 << 20

	jwt := middleware.NewJWTMiddleware(db)
	redeemLimit := middleware.NewRateLimiter(rate.Every(time.Second), 5)
	maxUploadSize := viper.GetInt64("upload.max_size")

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// HEAD /api/validate		-> Validates a JWT token
		main.HEAD("/validate", jwt, a.Validate)

		// GET /api/stats		-> Returns the caller's usage counters
		main.GET("/stats", jwt, cacheFor(30), a.UserStats)
	}

	users := main.Group("/users", middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/users 		-> Registers a new user
		users.POST("", a.UserRegister)

		// POST /api/users/login 	-> Logs in a user and returns a JWT token
		users.POST("/login", a.UserLogin)
	}

	files := main.Group("/files", jwt)
	{
		// POST /api/files         	-> Uploads a new ciphertext blob and registers the file
		files.POST("", middleware.BodySizeLimiter(maxUploadSize), a.FileUpload)

		// GET /api/files/shared	-> Lists files shared with the caller
		files.GET("/shared", a.FileSharedList)

		// GET /api/files/:id 		-> Fetches file metadata
		files.GET("/:id", a.FileFetch)

		// GET /api/files/:id/download	-> Fetches ciphertext + key for client-side decryption
		files.GET("/:id/download", a.FileDownload)

		// GET /api/files/:id/preview	-> Same as download, but only for previewable types
		files.GET("/:id/preview", a.FilePreview)

		// DELETE /api/files/:id	-> Deletes a file and cascades its grants and links
		files.DELETE("/:id", a.FileDelete)

		// POST /api/files/share	-> Grants access to another user by email
		files.POST("/share", middleware.BodySizeLimiter(1<<20), a.ShareCreate)

		// POST /api/files/share-by-id	-> Grants access to another user by their ID
		files.POST("/share-by-id", middleware.BodySizeLimiter(1<<20), a.ShareCreateByID)

		// DELETE /api/files/:id/share/:userID	-> Revokes a grant
		files.DELETE("/:id/share/:userID", a.ShareRevoke)

		// POST /api/files/share-link	-> Issues an expiring bearer-token link
		files.POST("/share-link", middleware.BodySizeLimiter(1<<20), a.ShareLinkCreate)
	}

	share := main.Group("/share", redeemLimit, middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/share/:token	-> Redeems a share link, no account needed
		share.POST("/:token", a.ShareLinkRedeem)
	}

	blockchain := main.Group("/blockchain", jwt)
	{
		// GET /api/blockchain/status		-> Chain store network status
		blockchain.GET("/status", cacheFor(10), a.ChainStatus)

		// GET /api/blockchain/transactions	-> Paginated audit log
		blockchain.GET("/transactions", a.ChainTransactions)
	}

	a.Argon = security.New()

	a.Keys, err = security.NewKeyWrap(viper.GetString("security.master_key"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize key wrapping, %w", err)
	}

	var inner chain.Store
	switch viper.GetString("chain.backend") {
	case "s3":
		inner, err = chain.NewS3()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 chain store, %w", err)
		}
	default:
		inner = chain.NewMemory(time.Duration(viper.GetInt("chain.latency_ms")) * time.Millisecond)
	}

	a.Chain = chain.WithRetry(
		inner,
		viper.GetInt("chain.attempts"),
		time.Duration(viper.GetInt("chain.timeout_ms"))*time.Millisecond,
	)

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

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}
