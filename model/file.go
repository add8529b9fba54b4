// Package model defines database models
package model

const (
	// File was inserted but the chain store hasn't confirmed the blob yet.
	// Writing the row first means a failed store never orphans a blob
	StatePending = "pending"
	StateStored  = "stored"
)

type File struct {
	ID     uint   `gorm:"primaryKey;autoIncrement;index" json:"id"`
	UserID string `gorm:"index;not null" json:"-"`

	// Content address returned by the chain store
	Cid string `gorm:"uniqueIndex;not null" json:"cid"`

	// Client-side AES key, wrapped with the server master key before it
	// ever touches the database
	WrappedKey string `json:"-"`

	Name   string `json:"name"`
	Format string `json:"format"`
	Size   int64  `json:"size"`
	State  string `json:"state"`

	CreatedAt int64 `gorm:"not null" json:"created_at"`

	Shares []FileShare `gorm:"foreignKey:FileID" json:"-"`
	Links  []ShareLink `gorm:"foreignKey:FileID" json:"-"`
}
