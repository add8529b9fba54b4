package service

import (
	"bitwise74/fileshare-api/model"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Delta carries signed adjustments to a user's counters
type Delta struct {
	UploadedFiles int64
	SharedFiles   int64
	StorageUsed   int64
	Downloads     int64
}

// Adjust applies d to userID's counters in a single UPDATE so two
// concurrent requests can't lose an increment to a read-modify-write race.
// Every counter is floored at zero inside the same statement
func Adjust(db *gorm.DB, userID string, d Delta) error {
	// Stats rows are created lazily on first touch
	err := db.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Stats{UserID: userID, UpdatedAt: time.Now().Unix()}).
		Error
	if err != nil {
		return err
	}

	floor := "MAX(%s + ?, 0)"
	if db.Dialector.Name() == "postgres" {
		floor = "GREATEST(%s + ?, 0)"
	}

	return db.
		Model(model.Stats{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"uploaded_files": gorm.Expr(fmt.Sprintf(floor, "uploaded_files"), d.UploadedFiles),
			"shared_files":   gorm.Expr(fmt.Sprintf(floor, "shared_files"), d.SharedFiles),
			"storage_used":   gorm.Expr(fmt.Sprintf(floor, "storage_used"), d.StorageUsed),
			"downloads":      gorm.Expr(fmt.Sprintf(floor, "downloads"), d.Downloads),
			"updated_at":     time.Now().Unix(),
		}).
		Error
}

// GetStats returns userID's counters, creating the zeroed row if the user
// never touched their stats before
func GetStats(db *gorm.DB, userID string) (*model.Stats, error) {
	err := db.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Stats{UserID: userID, UpdatedAt: time.Now().Unix()}).
		Error
	if err != nil {
		return nil, err
	}

	var stats model.Stats

	err = db.
		Where("user_id = ?", userID).
		First(&stats).
		Error
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
