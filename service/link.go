package service

import (
	"bitwise74/fileshare-api/model"
	"bitwise74/fileshare-api/security"
	"bitwise74/fileshare-api/util"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"gorm.io/gorm"
)

var (
	ErrLinkNotFound     = errors.New("share link not found")
	ErrLinkExpired      = errors.New("share link expired")
	ErrLinkPassword     = errors.New("wrong link password")
	ErrPasswordRequired = errors.New("a password is required for this link")
)

type IssuedLink struct {
	URL       string `json:"url"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// IssueLink mints a bearer-token link for fileID. The token comes from a
// CSPRNG (128 bits, hex encoded) and the optional password is stored as an
// argon2id hash, never in plaintext. Links stay valid until they expire and
// may be redeemed any number of times before that
func IssueLink(db *gorm.DB, argon *security.ArgonHash, fileID uint, ownerID string, requiresPassword bool, password string) (*IssuedLink, error) {
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

	if file.UserID != ownerID {
		return nil, ErrNotOwner
	}

	var passwordHash string
	if requiresPassword {
		if password == "" {
			return nil, ErrPasswordRequired
		}

		passwordHash, err = argon.GenerateFromPassword(password)
		if err != nil {
			return nil, err
		}
	}

	token, err := util.GenerateToken(16)
	if err != nil {
		return nil, err
	}

	days := viper.GetInt("share.link_expiry_days")
	if days <= 0 {
		days = 7
	}

	now := time.Now()
	link := model.ShareLink{
		FileID:           fileID,
		Token:            token,
		RequiresPassword: requiresPassword,
		PasswordHash:     passwordHash,
		ExpiresAt:        now.Add(time.Duration(days) * 24 * time.Hour).Unix(),
		CreatedAt:        now.Unix(),
	}

	if err := db.Create(&link).Error; err != nil {
		return nil, err
	}

	scheme := "http"
	if viper.GetBool("host.ssl.enabled") {
		scheme = "https"
	}

	return &IssuedLink{
		URL:       fmt.Sprintf("%s://%s/share/%s", scheme, viper.GetString("host.domain"), token),
		Token:     token,
		ExpiresAt: link.ExpiresAt,
	}, nil
}

// RedeemLink trades a bearer token (plus its password, if one was set) for
// the file it points at. A successful redemption counts as a download for
// the file's owner
func RedeemLink(db *gorm.DB, argon *security.ArgonHash, token, password string) (*model.File, error) {
	var link model.ShareLink

	err := db.
		Where("token = ?", token).
		First(&link).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}

	if time.Now().Unix() >= link.ExpiresAt {
		return nil, ErrLinkExpired
	}

	if link.RequiresPassword {
		ok, err := argon.VerifyPasswd(password, link.PasswordHash)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrLinkPassword
		}
	}

	var file model.File

	err = db.First(&file, link.FileID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}

	if err := Adjust(db, file.UserID, Delta{Downloads: 1}); err != nil {
		return nil, err
	}

	return &file, nil
}
