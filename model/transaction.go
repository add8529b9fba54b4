package model

const (
	TxStore    = "store"
	TxRetrieve = "retrieve"

	TxConfirmed = "confirmed"
	TxFailed    = "failed"
)

// Transaction is an append-only audit record of every chain store
// interaction. Rows outlive the file they point at, so FileID may dangle
type Transaction struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	TxID      string `gorm:"uniqueIndex;not null" json:"tx_id"`
	Cid       string `gorm:"index" json:"cid"`
	FileID    *uint  `json:"file_id,omitempty"`
	Type      string `gorm:"not null" json:"type"`
	Status    string `gorm:"not null" json:"status"`
	Metadata  string `json:"metadata,omitempty"`
	CreatedAt int64  `gorm:"not null" json:"created_at"`
}
