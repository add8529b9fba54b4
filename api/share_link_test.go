package api

import (
	"bitwise74/fileshare-api/model"
	"bitwise74/fileshare-api/service"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonReq(t *testing.T, method, path, user string, body any) *http.Request {
	t.Helper()

	b, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}

	return req
}

type redeemResponse struct {
	File model.File `json:"file"`
	Data []byte     `json:"data"`
	Key  string     `json:"key"`
}

func TestShareLinkRedeemFlow(t *testing.T) {
	a := testAPI(t)

	seedUser(t, a.DB, "owner")
	blob := []byte("ciphertext blob")
	fileID := uploadFile(t, a, "owner", "report.pdf", "application/pdf", blob)

	w := do(a, jsonReq(t, "POST", "/api/files/share-link", "owner", shareLinkBody{
		FileID: fileID,
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var link service.IssuedLink
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &link))
	assert.Len(t, link.Token, 32)
	assert.Contains(t, link.URL, link.Token)

	// Anyone holding the token gets the blob and the key back, no auth
	w = do(a, jsonReq(t, "POST", "/api/share/"+link.Token, "", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp redeemResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, blob, resp.Data)
	assert.Equal(t, "deadbeefcafebabe", resp.Key)
	assert.Equal(t, "report.pdf", resp.File.Name)

	// Multi-use until expiry
	w = do(a, jsonReq(t, "POST", "/api/share/"+link.Token, "", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// Each redemption counts as a download for the owner
	stats, err := service.GetStats(a.DB, "owner")
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Downloads)
}

func TestShareLinkRedeemPassword(t *testing.T) {
	a := testAPI(t)

	seedUser(t, a.DB, "owner")
	fileID := uploadFile(t, a, "owner", "secret.png", "image/png", []byte("pixels"))

	w := do(a, jsonReq(t, "POST", "/api/files/share-link", "owner", shareLinkBody{
		FileID:           fileID,
		RequiresPassword: true,
		Password:         "hunter22",
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var link service.IssuedLink
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &link))

	// Plaintext password must never hit the database
	var row model.ShareLink
	require.NoError(t, a.DB.Where("token = ?", link.Token).First(&row).Error)
	assert.True(t, row.RequiresPassword)
	assert.NotContains(t, row.PasswordHash, "hunter22")
	assert.Contains(t, row.PasswordHash, "$argon2id$")

	w = do(a, jsonReq(t, "POST", "/api/share/"+link.Token, "", redeemBody{Password: "wrong"}))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(a, jsonReq(t, "POST", "/api/share/"+link.Token, "", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(a, jsonReq(t, "POST", "/api/share/"+link.Token, "", redeemBody{Password: "hunter22"}))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestShareLinkRedeemExpired(t *testing.T) {
	a := testAPI(t)

	seedUser(t, a.DB, "owner")
	fileID := uploadFile(t, a, "owner", "old.txt", "text/plain", []byte("stale"))

	w := do(a, jsonReq(t, "POST", "/api/files/share-link", "owner", shareLinkBody{
		FileID: fileID,
	}))
	require.Equal(t, http.StatusOK, w.Code)

	var link service.IssuedLink
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &link))

	err := a.DB.
		Model(model.ShareLink{}).
		Where("token = ?", link.Token).
		Update("expires_at", time.Now().Add(-time.Hour).Unix()).
		Error
	require.NoError(t, err)

	w = do(a, jsonReq(t, "POST", "/api/share/"+link.Token, "", nil))
	assert.Equal(t, http.StatusGone, w.Code)
}

func TestShareLinkCreateRules(t *testing.T) {
	a := testAPI(t)

	seedUser(t, a.DB, "owner")
	seedUser(t, a.DB, "other")
	fileID := uploadFile(t, a, "owner", "mine.txt", "text/plain", []byte("mine"))

	// Only the owner can mint links
	w := do(a, jsonReq(t, "POST", "/api/files/share-link", "other", shareLinkBody{
		FileID: fileID,
	}))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(a, jsonReq(t, "POST", "/api/files/share-link", "owner", shareLinkBody{
		FileID: 9999,
	}))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(a, jsonReq(t, "POST", "/api/files/share-link", "owner", shareLinkBody{
		FileID:           fileID,
		RequiresPassword: true,
	}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(a, jsonReq(t, "POST", "/api/share/does-not-exist", "", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
