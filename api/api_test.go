package api

import (
	"bitwise74/fileshare-api/chain"
	"bitwise74/fileshare-api/middleware"
	"bitwise74/fileshare-api/model"
	"bitwise74/fileshare-api/security"
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testMasterKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// testAPI wires a full API against an in-memory database and chain store.
// Auth is replaced with a header the tests control directly, the JWT
// middleware has its own coverage
func testAPI(t *testing.T) *API {
	t.Helper()

	gin.SetMode(gin.TestMode)
	viper.Set("upload.max_size", int64(10<<20))
	viper.Set("storage.max_usage", int64(100<<20))
	viper.Set("upload.allowed_types", []string{})

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:api_%s?mode=memory&cache=shared", name)))
	require.NoError(t, err)

	err = db.AutoMigrate(model.User{}, model.File{}, model.FileShare{}, model.ShareLink{}, model.Transaction{}, model.Stats{})
	require.NoError(t, err)

	keys, err := security.NewKeyWrap(testMasterKey)
	require.NoError(t, err)

	a := &API{
		DB:    db,
		Argon: security.New(),
		Chain: chain.NewMemory(0),
		Keys:  keys,
	}

	router := gin.New()
	router.Use(middleware.NewRequestIDMiddleware())

	auth := func(c *gin.Context) {
		user := c.GetHeader("X-Test-User")
		if user == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set("userID", user)
		c.Next()
	}

	files := router.Group("/api/files", auth)
	{
		files.POST("", a.FileUpload)
		files.GET("/shared", a.FileSharedList)
		files.GET("/:id", a.FileFetch)
		files.GET("/:id/download", a.FileDownload)
		files.GET("/:id/preview", a.FilePreview)
		files.DELETE("/:id", a.FileDelete)
		files.POST("/share", a.ShareCreate)
		files.POST("/share-by-id", a.ShareCreateByID)
		files.DELETE("/:id/share/:userID", a.ShareRevoke)
		files.POST("/share-link", a.ShareLinkCreate)
	}

	router.POST("/api/share/:token", a.ShareLinkRedeem)
	router.GET("/api/stats", auth, a.UserStats)
	router.GET("/api/blockchain/status", auth, a.ChainStatus)
	router.GET("/api/blockchain/transactions", auth, a.ChainTransactions)

	a.Router = router
	return a
}

func seedUser(t *testing.T, db *gorm.DB, id string) *model.User {
	t.Helper()

	u := &model.User{
		ID:           id,
		Username:     id,
		Email:        id + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(u).Error)

	return u
}

func do(a *API, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func uploadReq(t *testing.T, userID, name, format string, data []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)

	require.NoError(t, mw.WriteField("key", "deadbeefcafebabe"))
	require.NoError(t, mw.WriteField("format", format))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Test-User", userID)

	return req
}

// uploadFile pushes a fake ciphertext blob through the real upload handler
func uploadFile(t *testing.T, a *API, userID, name, format string, data []byte) uint {
	t.Helper()

	w := do(a, uploadReq(t, userID, name, format, data))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var file model.File
	require.NoError(t, a.DB.Where("user_id = ?", userID).Order("id desc").First(&file).Error)

	return file.ID
}
