package service

import (
	"bitwise74/fileshare-api/model"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotOwner      = errors.New("only the owner can do this")
	ErrFileNotFound  = errors.New("file not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrSelfShare     = errors.New("can't share a file with yourself")
	ErrBadPermission = errors.New("invalid permission level")
	ErrGrantNotFound = errors.New("grant not found")
)

// CreateGrant gives recipientID durable access to fileID. Granting twice
// for the same pair updates the permission level instead of stacking rows,
// and the sharer's counter only moves when a new row is created
func CreateGrant(db *gorm.DB, fileID uint, granterID, recipientID, permission string) (*model.FileShare, error) {
	if !ValidPermission(permission) {
		return nil, ErrBadPermission
	}

	var file model.File

	err := db.
		Select("user_id").
		First(&file, fileID).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}

	if file.UserID != granterID {
		return nil, ErrNotOwner
	}

	if recipientID == granterID {
		return nil, ErrSelfShare
	}

	var exists bool

	err = db.
		Model(model.User{}).
		Select("count(*) > 0").
		Where("id = ?", recipientID).
		Find(&exists).
		Error
	if err != nil {
		return nil, err
	}

	if !exists {
		return nil, ErrUserNotFound
	}

	var share model.FileShare

	err = db.
		Where("file_id = ? AND user_id = ?", fileID, recipientID).
		First(&share).
		Error
	switch {
	case err == nil:
		share.Permission = permission
		if err := db.Save(&share).Error; err != nil {
			return nil, err
		}
		return &share, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		share = model.FileShare{
			FileID:     fileID,
			UserID:     recipientID,
			Permission: permission,
			CreatedAt:  time.Now().Unix(),
		}
		if err := db.Create(&share).Error; err != nil {
			return nil, err
		}
		if err := Adjust(db, granterID, Delta{SharedFiles: 1}); err != nil {
			return nil, err
		}
		return &share, nil

	default:
		return nil, err
	}
}

// RevokeGrant removes recipientID's access to fileID and gives the owner
// their shared-files count back
func RevokeGrant(db *gorm.DB, fileID uint, ownerID, recipientID string) error {
	var file model.File

	err := db.
		Select("user_id").
		First(&file, fileID).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFileNotFound
		}
		return err
	}

	if file.UserID != ownerID {
		return ErrNotOwner
	}

	res := db.
		Where("file_id = ? AND user_id = ?", fileID, recipientID).
		Delete(model.FileShare{})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrGrantNotFound
	}

	return Adjust(db, ownerID, Delta{SharedFiles: -1})
}

// UserIDByEmail resolves a grant recipient by their unique email. Both
// share paths converge on CreateGrant once the recipient is resolved
func UserIDByEmail(db *gorm.DB, email string) (string, error) {
	var user model.User

	err := db.
		Select("id").
		Where("email = ?", email).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	return user.ID, nil
}

// SharedFile is a file someone else granted to the user, with the grant's
// permission and the owner's display name resolved at the boundary
type SharedFile struct {
	model.File
	Permission string `json:"permission"`
	Owner      string `json:"owner"`
}

// ListSharedWith returns every file shared with userID
func ListSharedWith(db *gorm.DB, userID string) ([]SharedFile, error) {
	var out []SharedFile

	err := db.
		Model(model.File{}).
		Select("files.*, file_shares.permission AS permission, users.username AS owner").
		Joins("JOIN file_shares ON file_shares.file_id = files.id").
		Joins("JOIN users ON users.id = files.user_id").
		Where("file_shares.user_id = ?", userID).
		Order("file_shares.created_at DESC").
		Find(&out).
		Error
	if err != nil {
		return nil, err
	}

	return out, nil
}
