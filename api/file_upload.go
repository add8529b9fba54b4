package api

import (
	"bitwise74/fileshare-api/chain"
	"bitwise74/fileshare-api/model"
	"bitwise74/fileshare-api/service"
	"bitwise74/fileshare-api/validators"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FileUpload registers a client-side encrypted file. The row is written in
// the pending state before the blob is handed to the chain store, so a
// failed store leaves a deletable row instead of an orphaned blob
func (a *API) FileUpload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	if !strings.HasPrefix(c.Request.Header.Get("Content-Type"), "multipart/form-data") {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to parse multipart form", zap.Error(err))
		return
	}

	files := form.File["file"]
	if len(files) <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No file provided",
			"requestID": requestID,
		})
		return
	}

	fh := files[0]

	// The original mime type of the plaintext. The payload itself is
	// ciphertext, so the client has to tell us
	format := c.DefaultPostForm("format", "application/octet-stream")

	fileKey := c.PostForm("key")
	if fileKey == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No encryption key provided",
			"requestID": requestID,
		})
		return
	}

	code, err := validators.FileValidator(fh, format, a.DB, userID)
	if err != nil {
		if code == http.StatusInternalServerError {
			zap.L().Error("Failed to validate file", zap.Error(err))
			err = errors.New("internal server error")
		}

		c.AbortWithStatusJSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to open uploaded file", zap.Error(err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to read uploaded file", zap.Error(err))
		return
	}

	wrapped, err := a.Keys.Wrap(fileKey)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to wrap file key", zap.Error(err))
		return
	}

	// The cid is deterministic, so the row can carry it before the store
	// confirms the blob
	file := model.File{
		UserID:     userID,
		Cid:        chain.ComputeCid(data),
		WrappedKey: wrapped,
		Name:       fh.Filename,
		Format:     format,
		Size:       fh.Size,
		State:      model.StatePending,
		CreatedAt:  time.Now().Unix(),
	}

	if err := a.DB.Create(&file).Error; err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error":     "A file with identical content already exists",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to save file record to db", zap.Error(err))
		return
	}

	cid, err := a.Chain.Put(c.Request.Context(), data)
	if err != nil {
		recordTx(a.DB, model.TxStore, model.TxFailed, file.Cid, &file.ID, err.Error())

		// Roll the pending row back so the upload can be retried
		if derr := a.DB.Delete(model.File{}, file.ID).Error; derr != nil {
			zap.L().Error("Failed to clean up pending file row", zap.Error(derr))
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Storage backend unavailable",
			"requestID": requestID,
		})

		zap.L().Error("Failed to store blob", zap.Error(err))
		return
	}

	if cid != file.Cid {
		zap.L().Warn("Chain store returned an unexpected cid", zap.String("want", file.Cid), zap.String("got", cid))
	}

	err = a.DB.
		Model(model.File{}).
		Where("id = ?", file.ID).
		Update("state", model.StateStored).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to confirm file record", zap.Error(err))
		return
	}
	file.State = model.StateStored

	recordTx(a.DB, model.TxStore, model.TxConfirmed, file.Cid, &file.ID, file.Name)

	if err := service.Adjust(a.DB, userID, service.Delta{UploadedFiles: 1, StorageUsed: file.Size}); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to increment user's used storage", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, file)
}
