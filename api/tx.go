package api

import (
	"bitwise74/fileshare-api/model"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// recordTx appends a row to the audit log. The log is best effort, a failed
// insert never fails the request that triggered it
func recordTx(db *gorm.DB, txType, status, cid string, fileID *uint, metadata string) {
	err := db.Create(&model.Transaction{
		TxID:      uuid.NewString(),
		Cid:       cid,
		FileID:    fileID,
		Type:      txType,
		Status:    status,
		Metadata:  metadata,
		CreatedAt: time.Now().Unix(),
	}).Error
	if err != nil {
		zap.L().Error("Failed to record transaction", zap.String("cid", cid), zap.Error(err))
	}
}
