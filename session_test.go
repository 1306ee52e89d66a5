package appstate_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appstate "github.com/esperanza-dev/go-appstate"
)

func TestSessionUserAccessors(t *testing.T) {
	var missing *appstate.Session
	assert.Equal(t, "", missing.GetUserID())

	_, err := missing.GetUserUUID()
	require.Error(t, err)
	assert.True(t, appstate.IsNotAuthenticated(err))

	anonymous := &appstate.Session{AccessToken: "token"}
	assert.Equal(t, "", anonymous.GetUserID())

	user := &appstate.User{ID: uuid.New()}
	session := &appstate.Session{AccessToken: "token", User: user}
	assert.Equal(t, user.ID.String(), session.GetUserID())

	id, err := session.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()

	var missing *appstate.Session
	assert.False(t, missing.Expired(now))

	open := &appstate.Session{}
	assert.False(t, open.Expired(now))

	future := now.Add(time.Hour)
	assert.False(t, (&appstate.Session{ExpiresAt: &future}).Expired(now))

	past := now.Add(-time.Hour)
	assert.True(t, (&appstate.Session{ExpiresAt: &past}).Expired(now))
}

func TestSessionClone(t *testing.T) {
	var missing *appstate.Session
	assert.Nil(t, missing.Clone())

	user := &appstate.User{ID: uuid.New()}
	session := &appstate.Session{AccessToken: "one", User: user}
	clone := session.Clone()
	require.NotNil(t, clone)

	clone.AccessToken = "two"
	assert.Equal(t, "one", session.AccessToken)
	assert.Same(t, user, clone.User)
}

func TestSessionString(t *testing.T) {
	user := &appstate.User{ID: uuid.New()}
	expires := time.Now().Add(time.Hour)
	session := appstate.Session{TokenType: "bearer", ExpiresAt: &expires, User: user}

	out := session.String()
	assert.Contains(t, out, user.ID.String())
	assert.Contains(t, out, "bearer")
}
