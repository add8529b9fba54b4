package service

import (
	"bitwise74/fileshare-api/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasAccessOwner(t *testing.T) {
	db := testDB(t)
	owner := seedUser(t, db, "owner")
	file := seedFile(t, db, owner.ID, 100)

	for _, need := range []string{model.PermView, model.PermDownload, model.PermEdit} {
		ok, err := HasAccess(db, file.ID, owner.ID, need)
		require.NoError(t, err)
		assert.True(t, ok, "owner must always have %s access", need)
	}
}

func TestHasAccessStranger(t *testing.T) {
	db := testDB(t)
	owner := seedUser(t, db, "owner")
	stranger := seedUser(t, db, "stranger")
	file := seedFile(t, db, owner.ID, 100)

	ok, err := HasAccess(db, file.ID, stranger.ID, model.PermView)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasAccessUnknownFile(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, "user")

	ok, err := HasAccess(db, 9999, user.ID, model.PermView)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasAccessPermissionOrdering(t *testing.T) {
	db := testDB(t)
	owner := seedUser(t, db, "owner")
	viewer := seedUser(t, db, "viewer")
	downloader := seedUser(t, db, "downloader")
	editor := seedUser(t, db, "editor")
	file := seedFile(t, db, owner.ID, 100)

	_, err := CreateGrant(db, file.ID, owner.ID, viewer.ID, model.PermView)
	require.NoError(t, err)
	_, err = CreateGrant(db, file.ID, owner.ID, downloader.ID, model.PermDownload)
	require.NoError(t, err)
	_, err = CreateGrant(db, file.ID, owner.ID, editor.ID, model.PermEdit)
	require.NoError(t, err)

	cases := []struct {
		user string
		need string
		want bool
	}{
		{viewer.ID, model.PermView, true},
		{viewer.ID, model.PermDownload, false},
		{viewer.ID, model.PermEdit, false},
		{downloader.ID, model.PermView, true},
		{downloader.ID, model.PermDownload, true},
		{downloader.ID, model.PermEdit, false},
		{editor.ID, model.PermView, true},
		{editor.ID, model.PermDownload, true},
		{editor.ID, model.PermEdit, true},
	}

	for _, tc := range cases {
		ok, err := HasAccess(db, file.ID, tc.user, tc.need)
		require.NoError(t, err)
		assert.Equal(t, tc.want, ok, "user %s needing %s", tc.user, tc.need)
	}
}

func TestHasAccessAfterGrant(t *testing.T) {
	db := testDB(t)
	owner := seedUser(t, db, "owner")
	other := seedUser(t, db, "other")
	file := seedFile(t, db, owner.ID, 100)

	ok, err := HasAccess(db, file.ID, other.ID, model.PermView)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = CreateGrant(db, file.ID, owner.ID, other.ID, model.PermView)
	require.NoError(t, err)

	ok, err = HasAccess(db, file.ID, other.ID, model.PermView)
	require.NoError(t, err)
	assert.True(t, ok)
}
