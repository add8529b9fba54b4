package model

// Grant permission levels, weakest to strongest. A stronger level covers
// everything below it
const (
	PermView     = "view"
	PermDownload = "download"
	PermEdit     = "edit"
)

type FileShare struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	FileID     uint   `gorm:"not null;uniqueIndex:idx_share_file_user" json:"file_id"`
	UserID     string `gorm:"not null;uniqueIndex:idx_share_file_user" json:"user_id"`
	Permission string `gorm:"not null" json:"permission"`
	CreatedAt  int64  `gorm:"not null" json:"created_at"`
}
