package validators

import (
	"bitwise74/fileshare-api/model"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

var (
	ErrFileTooLarge        = errors.New("file too large")
	ErrFileNameTooLong     = errors.New("file name is too long")
	ErrFileTypeUnsupported = errors.New("unsupported file type")
	ErrNoFile              = errors.New("no file provided")
	ErrNoSpace             = errors.New("not enough space")
)

const maxFileNameSize = 255

// FileValidator checks an uploaded ciphertext blob before it's accepted.
// The blob itself is opaque (it was encrypted client-side), so the declared
// format is validated instead of sniffing the payload
func FileValidator(fh *multipart.FileHeader, format string, db *gorm.DB, userID string) (int, error) {
	if fh == nil {
		return http.StatusBadRequest, ErrNoFile
	}

	if len(fh.Filename) > maxFileNameSize {
		return http.StatusBadRequest, ErrFileNameTooLong
	}

	maxFileSize := viper.GetInt64("upload.max_size")
	if fh.Size > maxFileSize {
		return http.StatusRequestEntityTooLarge, ErrFileTooLarge
	}

	allowed := viper.GetStringSlice("upload.allowed_types")
	if len(allowed) > 0 && !mimetype.EqualsAny(format, allowed...) {
		return http.StatusBadRequest, ErrFileTypeUnsupported
	}

	if db != nil {
		var usedSpace int64
		err := db.
			Model(model.Stats{}).
			Where("user_id = ?", userID).
			Select("storage_used").
			Find(&usedSpace).
			Error
		if err != nil {
			return http.StatusInternalServerError, err
		}

		if usedSpace+fh.Size > viper.GetInt64("storage.max_usage") {
			return http.StatusConflict, ErrNoSpace
		}
	}

	return 0, nil
}
