package capsule

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memoreal/internal/models"
)

const (
	testCapsuleID = "9sEBnNzja3frQmiU6DBqfn69xMaJSSDdPaPq5GvBhSjQ"
	testAuthor    = "3fvLRfGFfAYRb28v8C7r2WgpFCUBkcUHZdsvq5fEuEQ3"
	testStranger  = "11111111111111111111111111111111"
)

func newParams(capsuleType models.CapsuleType) NewParams {
	return NewParams{
		ID:        testCapsuleID,
		Author:    testAuthor,
		Title:     "일반 캡슐",
		Recipient: "future me",
		Message:   "hello from the past",
		MediaURL:  "https://example.com/photo.jpg",
		Type:      capsuleType,
	}
}

func TestValidateFieldsBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		message string
		wantErr error
	}{
		{name: "title at limit", title: strings.Repeat("a", 64), message: "m"},
		{name: "title over limit", title: strings.Repeat("a", 65), message: "m", wantErr: ErrTitleTooLong},
		{name: "message at limit", title: "t", message: strings.Repeat("b", 256)},
		{name: "message over limit", title: "t", message: strings.Repeat("b", 257), wantErr: ErrMessageTooLong},
		{name: "empty fields", title: "", message: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFields(tt.title, tt.message)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestValidateFieldsCountsBytes(t *testing.T) {
	// 22 three-byte runes = 66 bytes.
	err := ValidateFields(strings.Repeat("캡", 22), "")
	require.ErrorIs(t, err, ErrTitleTooLong)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "title", vErr.Field)
	assert.Equal(t, 66, vErr.Length)
	assert.Equal(t, models.MaxTitleLength, vErr.Max)
}

func TestNew(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("general capsule", func(t *testing.T) {
		c, err := New(newParams(models.CapsuleGeneral), now)
		require.NoError(t, err)
		assert.Equal(t, testCapsuleID, c.ID)
		assert.Equal(t, testAuthor, c.Author)
		assert.Equal(t, "일반 캡슐", c.Title)
		assert.Nil(t, c.UnlockAt)
		assert.Equal(t, now, c.CreatedAt)
		assert.False(t, c.Minted())
	})

	t.Run("time locked requires unlock time", func(t *testing.T) {
		_, err := New(newParams(models.CapsuleTimeLocked), now)
		require.ErrorIs(t, err, ErrUnlockAtRequired)
	})

	t.Run("time locked with location hashes secret", func(t *testing.T) {
		params := newParams(models.CapsuleTimeLocked)
		unlockAt := now.Add(time.Hour)
		params.UnlockAt = &unlockAt
		params.Location = "under the old oak"

		c, err := New(params, now)
		require.NoError(t, err)
		require.NotNil(t, c.UnlockAt)
		assert.True(t, c.UnlockAt.Equal(unlockAt))
		assert.True(t, c.HasLocation())
		assert.NotContains(t, c.LocationHash, "oak")
	})

	t.Run("validation failure produces no record", func(t *testing.T) {
		params := newParams(models.CapsuleGeneral)
		params.Title = strings.Repeat("a", 65)
		c, err := New(params, now)
		require.ErrorIs(t, err, ErrTitleTooLong)
		assert.Nil(t, c)
	})

	t.Run("invalid identities", func(t *testing.T) {
		params := newParams(models.CapsuleGeneral)
		params.Author = "not-a-key"
		_, err := New(params, now)
		require.ErrorIs(t, err, ErrInvalidIdentity)

		params = newParams(models.CapsuleGeneral)
		params.ID = ""
		_, err = New(params, now)
		require.ErrorIs(t, err, ErrInvalidIdentity)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := New(newParams(models.CapsuleType("sealed")), now)
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})
}

func TestEvaluatorIsUnlockable(t *testing.T) {
	ev := NewEvaluator(LocationIgnore)
	now := time.Now().UTC()

	general := &models.Capsule{Type: models.CapsuleGeneral}
	assert.True(t, ev.IsUnlockable(general, now))
	assert.True(t, ev.IsUnlockable(general, time.Time{}))

	future := now.Add(time.Hour)
	locked := &models.Capsule{Type: models.CapsuleTimeLocked, UnlockAt: &future}
	assert.False(t, ev.IsUnlockable(locked, now))
	assert.True(t, ev.IsUnlockable(locked, future))
	assert.True(t, ev.IsUnlockable(locked, future.Add(time.Second)))

	missing := &models.Capsule{Type: models.CapsuleTimeLocked}
	assert.False(t, ev.IsUnlockable(missing, now))

	unknown := &models.Capsule{Type: "sealed"}
	assert.False(t, ev.IsUnlockable(unknown, now))
}

func TestEvaluatorView(t *testing.T) {
	now := time.Now().UTC()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)
	right := "under the old oak"
	wrong := "by the river"

	general := &models.Capsule{ID: testCapsuleID, Type: models.CapsuleGeneral, Title: "일반 캡슐", UnlockAt: &future, LocationHash: "hash"}
	lockedFuture := &models.Capsule{ID: testCapsuleID, Type: models.CapsuleTimeLocked, Title: "sealed", Message: "later", UnlockAt: &future, LocationHash: "hash"}
	lockedPast := &models.Capsule{ID: testCapsuleID, Type: models.CapsuleTimeLocked, Title: "opened", Message: "now", UnlockAt: &past, LocationHash: "hash"}

	fakeVerify := func(hash, candidate string) bool { return hash == "hash" && candidate == right }

	t.Run("general ignores time and location", func(t *testing.T) {
		ev := &Evaluator{LocationPolicy: LocationEnforce, verify: fakeVerify}
		content, err := ev.View(general, now, &wrong)
		require.NoError(t, err)
		assert.Equal(t, "일반 캡슐", content.Title)

		content, err = ev.View(general, now, nil)
		require.NoError(t, err)
		assert.Equal(t, "일반 캡슐", content.Title)
	})

	t.Run("time gate dominates location", func(t *testing.T) {
		for _, policy := range []LocationPolicy{LocationIgnore, LocationEnforce} {
			ev := &Evaluator{LocationPolicy: policy, verify: fakeVerify}
			for _, loc := range []*string{nil, &right, &wrong} {
				_, err := ev.View(lockedFuture, now, loc)
				require.ErrorIs(t, err, ErrCapsuleLocked)
				assert.True(t, IsAccess(err))
				assert.Contains(t, err.Error(), "Capsule is locked")
			}
		}
	})

	t.Run("opened capsule round trips content", func(t *testing.T) {
		ev := &Evaluator{LocationPolicy: LocationIgnore, verify: fakeVerify}
		content, err := ev.View(lockedPast, now, &wrong)
		require.NoError(t, err)
		assert.Equal(t, "opened", content.Title)
		assert.Equal(t, "now", content.Message)
	})

	t.Run("enforced location", func(t *testing.T) {
		ev := &Evaluator{LocationPolicy: LocationEnforce, verify: fakeVerify}
		_, err := ev.View(lockedPast, now, &wrong)
		require.ErrorIs(t, err, ErrLocationMismatch)
		assert.NotErrorIs(t, err, ErrCapsuleLocked)

		_, err = ev.View(lockedPast, now, nil)
		require.ErrorIs(t, err, ErrLocationMismatch)

		content, err := ev.View(lockedPast, now, &right)
		require.NoError(t, err)
		assert.Equal(t, "opened", content.Title)
	})

	t.Run("enforced policy without stored location", func(t *testing.T) {
		ev := &Evaluator{LocationPolicy: LocationEnforce, verify: fakeVerify}
		noLocation := *lockedPast
		noLocation.LocationHash = ""
		_, err := ev.View(&noLocation, now, nil)
		require.NoError(t, err)
	})
}

func TestEvaluatorWithBcryptLocation(t *testing.T) {
	now := time.Now().UTC()
	params := newParams(models.CapsuleTimeLocked)
	past := now.Add(-time.Minute)
	params.UnlockAt = &past
	params.Location = "under the old oak"
	c, err := New(params, now)
	require.NoError(t, err)

	ev := NewEvaluator(LocationEnforce)
	supplied := "  under the old oak "
	_, err = ev.View(c, now, &supplied)
	require.NoError(t, err)
}

func TestParseLocationPolicy(t *testing.T) {
	policy, err := ParseLocationPolicy("")
	require.NoError(t, err)
	assert.Equal(t, LocationIgnore, policy)

	policy, err = ParseLocationPolicy(" ENFORCE ")
	require.NoError(t, err)
	assert.Equal(t, LocationEnforce, policy)

	_, err = ParseLocationPolicy("strict")
	require.Error(t, err)
}

func TestAuthorize(t *testing.T) {
	c := &models.Capsule{Author: testAuthor}

	require.NoError(t, Authorize(c, testAuthor))
	require.NoError(t, Authorize(c, " "+testAuthor+" "))
	require.ErrorIs(t, Authorize(c, testStranger), ErrAuthorityMismatch)
	require.ErrorIs(t, Authorize(nil, testAuthor), ErrAuthorityMismatch)
	assert.Equal(t, "Mint authority mismatch", Authorize(c, testStranger).Error())
}

func TestAuthorizeRejectsMalformedCaller(t *testing.T) {
	c := &models.Capsule{Author: testAuthor}

	for _, caller := range []string{"", "   ", "not-base58-0OIl", testAuthor + "x", "1111"} {
		err := Authorize(c, caller)
		require.Error(t, err, "caller %q", caller)
		assert.ErrorIs(t, err, ErrInvalidIdentity, "caller %q", caller)
		assert.NotErrorIs(t, err, ErrAuthorityMismatch, "caller %q", caller)
		assert.True(t, IsValidation(err), "caller %q", caller)
		assert.False(t, IsAuthor(c, caller), "caller %q", caller)
	}
	assert.True(t, IsAuthor(c, " "+testAuthor+"\n"))
}

func TestValidateMintMetadata(t *testing.T) {
	require.NoError(t, ValidateMintMetadata("Memoreal #1", "MEMO", "https://example.com/1.json"))
	require.ErrorIs(t, ValidateMintMetadata(strings.Repeat("n", 33), "MEMO", ""), ErrMintFieldTooLong)
	require.ErrorIs(t, ValidateMintMetadata("n", strings.Repeat("S", 11), ""), ErrMintFieldTooLong)
	require.ErrorIs(t, ValidateMintMetadata("n", "S", strings.Repeat("u", 201)), ErrMintFieldTooLong)
}

func TestAccessErrorMessage(t *testing.T) {
	unlockAt := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	err := &AccessError{UnlockAt: unlockAt, Err: ErrCapsuleLocked}
	assert.Equal(t, "Capsule is locked until 2030-01-01T00:00:00Z", err.Error())

	ledgerErr := &LedgerError{Op: "mint", Err: errors.New("boom")}
	assert.Equal(t, "ledger mint: boom", ledgerErr.Error())
	assert.False(t, IsValidation(ledgerErr))
}
