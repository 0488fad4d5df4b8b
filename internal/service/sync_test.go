package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/readsync/kosync-server/internal/mocks"
	"github.com/readsync/kosync-server/internal/model"
	"github.com/readsync/kosync-server/internal/repository/memory"
	"github.com/readsync/kosync-server/internal/testutil"
)

func newMemorySync(t *testing.T, cfg SyncConfig) *Sync {
	t.Helper()
	userStore := memory.NewUserRepository()
	progressStore := memory.NewProgressRepository()
	log := testutil.MakeNoopLogger()
	return NewSync(NewAuth(userStore, log), userStore, progressStore, cfg, log)
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func payload(doc string) model.DocumentPayload {
	return model.DocumentPayload{
		Document:   strPtr(doc),
		Progress:   strPtr("page:42"),
		Percentage: floatPtr(0.5),
		Device:     strPtr("kindle"),
		DeviceID:   strPtr("DEV1"),
	}
}

func TestSync_Register_Closed(t *testing.T) {
	s := newMemorySync(t, SyncConfig{OpenRegistrations: false})

	_, err := s.Register(context.Background(), strPtr("alice"), strPtr("pw1"))
	assert.ErrorIs(t, err, model.ErrRegistrationClosed)
}

func TestSync_Register_InvalidRequest(t *testing.T) {
	s := newMemorySync(t, SyncConfig{OpenRegistrations: true})
	ctx := context.Background()

	tests := []struct {
		name     string
		username *string
		password *string
	}{
		{name: "nil username", username: nil, password: strPtr("pw")},
		{name: "nil password", username: strPtr("alice"), password: nil},
		{name: "empty username", username: strPtr(""), password: strPtr("pw")},
		{name: "empty password", username: strPtr("alice"), password: strPtr("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(ctx, tt.username, tt.password)
			assert.ErrorIs(t, err, model.ErrInvalidRequest)
		})
	}
}

func TestSync_Register_Duplicate(t *testing.T) {
	s := newMemorySync(t, SyncConfig{OpenRegistrations: true})
	ctx := context.Background()

	username, err := s.Register(ctx, strPtr("alice"), strPtr("pw1"))
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	_, err = s.Register(ctx, strPtr("alice"), strPtr("other"))
	assert.ErrorIs(t, err, model.ErrDuplicateUser)

	// The original credential survives the failed re-registration.
	require.NoError(t, s.Authorize(ctx, model.Claim{Username: "alice", Secret: "pw1"}))
	assert.ErrorIs(t, s.Authorize(ctx, model.Claim{Username: "alice", Secret: "other"}), model.ErrBadSecret)
}

func TestSync_Authorize_DelegatesToAuthGuard(t *testing.T) {
	s := newMemorySync(t, SyncConfig{OpenRegistrations: true})
	ctx := context.Background()

	_, err := s.Register(ctx, strPtr("alice"), strPtr("pw1"))
	require.NoError(t, err)

	require.NoError(t, s.Authorize(ctx, model.Claim{Username: "alice", Secret: "pw1"}))
	assert.ErrorIs(t, s.Authorize(ctx, model.Claim{Username: "alice", Secret: "pw2"}), model.ErrBadSecret)
	assert.ErrorIs(t, s.Authorize(ctx, model.Claim{Username: "bob", Secret: "pw1"}), model.ErrUnknownUser)
	assert.ErrorIs(t, s.Authorize(ctx, model.Claim{}), model.ErrMissingCredentials)
}

func TestSync_UpdateProgress_PropagatesAuthFailure(t *testing.T) {
	s := newMemorySync(t, SyncConfig{OpenRegistrations: true})
	ctx := context.Background()

	_, _, err := s.UpdateProgress(ctx, model.Claim{Username: "ghost", Secret: "pw"}, payload("doc"))
	assert.ErrorIs(t, err, model.ErrUnknownUser)
}

func TestSync_UpdateProgress_IncompleteDocument(t *testing.T) {
	s := newMemorySync(t, SyncConfig{OpenRegistrations: true})
	ctx := context.Background()
	_, err := s.Register(ctx, strPtr("alice"), strPtr("pw1"))
	require.NoError(t, err)

	claim := model.Claim{Username: "alice", Secret: "pw1"}

	tests := []struct {
		name   string
		mutate func(*model.DocumentPayload)
	}{
		{name: "nil document", mutate: func(p *model.DocumentPayload) { p.Document = nil }},
		{name: "empty document", mutate: func(p *model.DocumentPayload) { p.Document = strPtr("") }},
		{name: "nil progress", mutate: func(p *model.DocumentPayload) { p.Progress = nil }},
		{name: "nil percentage", mutate: func(p *model.DocumentPayload) { p.Percentage = nil }},
		{name: "nil device", mutate: func(p *model.DocumentPayload) { p.Device = nil }},
		{name: "nil device id", mutate: func(p *model.DocumentPayload) { p.DeviceID = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := payload("bookhash1")
			tt.mutate(&p)
			_, _, err := s.UpdateProgress(ctx, claim, p)
			assert.ErrorIs(t, err, model.ErrIncompleteDocument)
		})
	}
}

func TestSync_UpdateThenGet_RoundTrip(t *testing.T) {
	s := newMemorySync(t, SyncConfig{OpenRegistrations: true})
	ctx := context.Background()
	_, err := s.Register(ctx, strPtr("alice"), strPtr("pw1"))
	require.NoError(t, err)

	claim := model.Claim{Username: "alice", Secret: "pw1"}

	before := time.Now().Unix()
	document, timestamp, err := s.UpdateProgress(ctx, claim, payload("bookhash1"))
	require.NoError(t, err)
	assert.Equal(t, "bookhash1", document)
	assert.GreaterOrEqual(t, timestamp, before)

	got, err := s.GetProgress(ctx, claim, "bookhash1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "bookhash1", got.Document)
	assert.Equal(t, "page:42", got.Position)
	assert.Equal(t, 0.5, got.Percentage)
	assert.Equal(t, "kindle", got.Device)
	assert.Equal(t, "DEV1", got.DeviceID)
	assert.Equal(t, timestamp, got.Timestamp)
}

func TestSync_UpdateProgress_LastWriteWins(t *testing.T) {
	s := newMemorySync(t, SyncConfig{OpenRegistrations: true})
	ctx := context.Background()
	_, err := s.Register(ctx, strPtr("alice"), strPtr("pw1"))
	require.NoError(t, err)

	claim := model.Claim{Username: "alice", Secret: "pw1"}

	s.now = func() time.Time { return time.Unix(1000, 0) }
	_, _, err = s.UpdateProgress(ctx, claim, payload("bookhash1"))
	require.NoError(t, err)

	// A second update replaces the record wholesale, even with an
	// earlier server clock: the prior timestamp is never consulted.
	s.now = func() time.Time { return time.Unix(500, 0) }
	second := model.DocumentPayload{
		Document:   strPtr("bookhash1"),
		Progress:   strPtr("page:7"),
		Percentage: floatPtr(0.1),
		Device:     strPtr("phone"),
		DeviceID:   strPtr("DEV2"),
	}
	_, timestamp, err := s.UpdateProgress(ctx, claim, second)
	require.NoError(t, err)
	assert.Equal(t, int64(500), timestamp)

	got, err := s.GetProgress(ctx, claim, "bookhash1")
	require.NoError(t, err)
	assert.Equal(t, "page:7", got.Position)
	assert.Equal(t, 0.1, got.Percentage)
	assert.Equal(t, "phone", got.Device)
	assert.Equal(t, "DEV2", got.DeviceID)
	assert.Equal(t, int64(500), got.Timestamp)
}

func TestSync_UpdateProgress_CrossKeyIsolation(t *testing.T) {
	s := newMemorySync(t, SyncConfig{OpenRegistrations: true})
	ctx := context.Background()
	for _, u := range []string{"alice", "bob"} {
		_, err := s.Register(ctx, strPtr(u), strPtr("pw"))
		require.NoError(t, err)
	}

	alice := model.Claim{Username: "alice", Secret: "pw"}
	bob := model.Claim{Username: "bob", Secret: "pw"}

	_, _, err := s.UpdateProgress(ctx, alice, payload("docA"))
	require.NoError(t, err)
	_, _, err = s.UpdateProgress(ctx, alice, payload("docB"))
	require.NoError(t, err)
	_, _, err = s.UpdateProgress(ctx, bob, payload("docA"))
	require.NoError(t, err)

	overwrite := model.DocumentPayload{
		Document:   strPtr("docA"),
		Progress:   strPtr("page:99"),
		Percentage: floatPtr(0.9),
		Device:     strPtr("tablet"),
		DeviceID:   strPtr("DEV9"),
	}
	_, _, err = s.UpdateProgress(ctx, alice, overwrite)
	require.NoError(t, err)

	gotB, err := s.GetProgress(ctx, alice, "docB")
	require.NoError(t, err)
	assert.Equal(t, "page:42", gotB.Position)

	gotBobA, err := s.GetProgress(ctx, bob, "docA")
	require.NoError(t, err)
	assert.Equal(t, "page:42", gotBobA.Position)

	gotA, err := s.GetProgress(ctx, alice, "docA")
	require.NoError(t, err)
	assert.Equal(t, "page:99", gotA.Position)
}

func TestSync_GetProgress_MissingDocument(t *testing.T) {
	s := newMemorySync(t, SyncConfig{OpenRegistrations: true})
	ctx := context.Background()
	_, err := s.Register(ctx, strPtr("alice"), strPtr("pw1"))
	require.NoError(t, err)

	_, err = s.GetProgress(ctx, model.Claim{Username: "alice", Secret: "pw1"}, "")
	assert.ErrorIs(t, err, model.ErrMissingDocument)
}

func TestSync_GetProgress_NotFound(t *testing.T) {
	s := newMemorySync(t, SyncConfig{OpenRegistrations: true})
	ctx := context.Background()
	_, err := s.Register(ctx, strPtr("alice"), strPtr("pw1"))
	require.NoError(t, err)

	_, err = s.GetProgress(ctx, model.Claim{Username: "alice", Secret: "pw1"}, "neverseen")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSync_GetProgress_RandomDeviceID(t *testing.T) {
	ctx := context.Background()
	userStore := memory.NewUserRepository()
	progressStore := memory.NewProgressRepository()
	log := testutil.MakeNoopLogger()
	s := NewSync(NewAuth(userStore, log), userStore, progressStore, SyncConfig{
		OpenRegistrations: true,
		RandomDeviceID:    true,
	}, log)

	_, err := s.Register(ctx, strPtr("alice"), strPtr("pw1"))
	require.NoError(t, err)
	claim := model.Claim{Username: "alice", Secret: "pw1"}

	_, _, err = s.UpdateProgress(ctx, claim, payload("bookhash1"))
	require.NoError(t, err)

	got, err := s.GetProgress(ctx, claim, "bookhash1")
	require.NoError(t, err)
	assert.NotEqual(t, "DEV1", got.DeviceID)
	assert.Len(t, got.DeviceID, 32)
	assert.Equal(t, "page:42", got.Position)
	assert.Equal(t, "kindle", got.Device)

	// Substitution is a response transform only: the stored value is
	// untouched and a second read gets a different identifier.
	stored, err := progressStore.Get(ctx, "alice", "bookhash1")
	require.NoError(t, err)
	assert.Equal(t, "DEV1", stored.DeviceID)

	again, err := s.GetProgress(ctx, claim, "bookhash1")
	require.NoError(t, err)
	assert.NotEqual(t, got.DeviceID, again.DeviceID)
}

func TestSync_UpdateProgress_StoreError(t *testing.T) {
	ctx := context.Background()
	userStore := &mocks.UserStore{}
	progressStore := &mocks.ProgressStore{}
	log := testutil.MakeNoopLogger()

	userStore.On("Exists", mock.Anything, "alice").Return(true, nil)
	userStore.On("Matches", mock.Anything, "alice", "pw1").Return(true, nil)
	progressStore.On("Upsert", mock.Anything, mock.Anything).Return(assert.AnError)

	s := NewSync(NewAuth(userStore, log), userStore, progressStore, SyncConfig{OpenRegistrations: true}, log)

	_, _, err := s.UpdateProgress(ctx, model.Claim{Username: "alice", Secret: "pw1"}, payload("doc"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upsert progress")
}
