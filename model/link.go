package model

type ShareLink struct {
	ID               uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	FileID           uint   `gorm:"not null;index" json:"file_id"`
	Token            string `gorm:"uniqueIndex;not null" json:"token"`
	RequiresPassword bool   `json:"requires_password"`

	// argon2id encoded, empty unless RequiresPassword
	PasswordHash string `json:"-"`

	ExpiresAt int64 `gorm:"not null" json:"expires_at"`
	CreatedAt int64 `gorm:"not null" json:"created_at"`
}
