package service

import (
	"bitwise74/fileshare-api/model"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var cidSeq int

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache database per test, so pooled connections see
	// the same data but tests stay isolated from each other
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn))
	require.NoError(t, err)

	err = db.AutoMigrate(model.User{}, model.File{}, model.FileShare{}, model.ShareLink{}, model.Transaction{}, model.Stats{})
	require.NoError(t, err)

	return db
}

func seedUser(t *testing.T, db *gorm.DB, id string) *model.User {
	t.Helper()

	u := &model.User{
		ID:           id,
		Username:     id,
		Email:        id + "@example.com",
		PasswordHash: "x",
		CreatedAt:    time.Now().Unix(),
	}
	require.NoError(t, db.Create(u).Error)

	return u
}

func seedFile(t *testing.T, db *gorm.DB, ownerID string, size int64) *model.File {
	t.Helper()

	cidSeq++
	f := &model.File{
		UserID:    ownerID,
		Cid:       fmt.Sprintf("cid-%s-%d", ownerID, cidSeq),
		Name:      "doc.pdf",
		Format:    "application/pdf",
		Size:      size,
		State:     model.StateStored,
		CreatedAt: time.Now().Unix(),
	}
	require.NoError(t, db.Create(f).Error)

	return f
}
