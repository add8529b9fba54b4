// Package service holds the sharing and accounting logic that sits between
// the HTTP handlers and the database
package service

import (
	"bitwise74/fileshare-api/model"
	"errors"

	"gorm.io/gorm"
)

// Permission ranks, weakest first. A grant covers an operation when its
// rank is at least the rank the operation needs
var permRank = map[string]int{
	model.PermView:     0,
	model.PermDownload: 1,
	model.PermEdit:     2,
}

func ValidPermission(p string) bool {
	_, ok := permRank[p]
	return ok
}

// HasAccess reports whether userID may perform an operation requiring the
// given permission level on fileID. Owners can always do everything.
// Unknown files are simply not accessible, the caller turns that into a 404
func HasAccess(db *gorm.DB, fileID uint, userID, need string) (bool, error) {
	var file model.File

	err := db.
		Select("user_id").
		First(&file, fileID).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if file.UserID == userID {
		return true, nil
	}

	var share model.FileShare

	err = db.
		Where("file_id = ? AND user_id = ?", fileID, userID).
		First(&share).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return permRank[share.Permission] >= permRank[need], nil
}
