package model

type Stats struct {
	UserID        string `gorm:"primaryKey" json:"-"`
	UploadedFiles int64  `json:"uploadedFiles"`
	SharedFiles   int64  `json:"sharedFiles"`
	StorageUsed   int64  `json:"storageUsed"`
	Downloads     int64  `json:"downloads"`
	UpdatedAt     int64  `json:"updatedAt"`
}
