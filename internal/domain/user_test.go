package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validUserInput() NewUserInput {
	return NewUserInput{
		Email:       "test@example.com",
		Password:    "password123",
		Name:        "홍길동",
		PhoneNumber: "010-1234-5678",
		Role:        RoleBidder,
	}
}

func fixClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func TestNewUserDefaultsToActiveWithEqualTimestamps(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	fixClock(t, at)

	user, err := NewUser(validUserInput(), nil)
	require.NoError(t, err)

	assert.Equal(t, UserStatusActive, user.Status())
	assert.Equal(t, at, user.CreatedAt())
	assert.Equal(t, user.CreatedAt(), user.UpdatedAt())
	assert.Empty(t, user.ID())
	assert.False(t, user.IsPersisted())
	assert.Equal(t, "test@example.com", user.Email())
	assert.Equal(t, RoleBidder, user.Role())
}

func TestNewUserAcceptsEveryRole(t *testing.T) {
	for _, role := range []UserRole{RoleSeller, RoleBidder, RoleAdmin} {
		in := validUserInput()
		in.Role = role
		user, err := NewUser(in, nil)
		require.NoError(t, err, role)
		assert.Equal(t, role, user.Role())
	}
}

func TestNewUserRejectsMissingField(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*NewUserInput)
		field  string
	}{
		{"empty email", func(in *NewUserInput) { in.Email = "" }, FieldEmail},
		{"blank email", func(in *NewUserInput) { in.Email = "   " }, FieldEmail},
		{"empty password", func(in *NewUserInput) { in.Password = "" }, FieldPassword},
		{"blank password", func(in *NewUserInput) { in.Password = "\t" }, FieldPassword},
		{"empty name", func(in *NewUserInput) { in.Name = "" }, FieldName},
		{"blank phone", func(in *NewUserInput) { in.PhoneNumber = " " }, FieldPhoneNumber},
		{"missing role", func(in *NewUserInput) { in.Role = "" }, FieldRole},
		{"unknown role", func(in *NewUserInput) { in.Role = "OWNER" }, FieldRole},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validUserInput()
			tc.mutate(&in)

			user, err := NewUser(in, nil)
			require.Error(t, err)
			assert.Nil(t, user)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, []string{tc.field}, verr.Fields())
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestNewUserReportsFieldsInOrder(t *testing.T) {
	user, err := NewUser(NewUserInput{Name: "홍길동"}, nil)
	require.Error(t, err)
	assert.Nil(t, user)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{FieldEmail, FieldPassword, FieldPhoneNumber, FieldRole}, verr.Fields())
	assert.Contains(t, err.Error(), "email is required")
}

func TestNewUserSealsPasswordOnlyAfterValidation(t *testing.T) {
	calls := 0
	seal := func(plain string) (string, error) {
		calls++
		return "sealed:" + plain, nil
	}

	in := validUserInput()
	in.Email = ""
	_, err := NewUser(in, seal)
	require.Error(t, err)
	assert.Zero(t, calls)

	user, err := NewUser(validUserInput(), seal)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "sealed:password123", user.Password())
}

func TestNewUserPropagatesSealerFailure(t *testing.T) {
	boom := errors.New("hash failed")
	user, err := NewUser(validUserInput(), func(string) (string, error) { return "", boom })
	assert.Nil(t, user)
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsValidation(err))
}

func TestRestoreUserRoundTrip(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	snap := UserSnapshot{
		ID:          "1",
		Email:       "test@example.com",
		Password:    "password123",
		Name:        "홍길동",
		PhoneNumber: "010-1234-5678",
		Role:        RoleBidder,
		Status:      UserStatusActive,
		CreatedAt:   created,
		UpdatedAt:   created.Add(time.Hour),
	}

	user := RestoreUser(snap)

	assert.Equal(t, snap, user.Snapshot())
	assert.Equal(t, "1", user.ID())
	assert.True(t, user.IsPersisted())
}

func TestMutationsBumpUpdatedAtOnly(t *testing.T) {
	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	fixClock(t, created)
	user, err := NewUser(validUserInput(), nil)
	require.NoError(t, err)

	later := created.Add(time.Minute)
	now = func() time.Time { return later }

	require.NoError(t, user.Rename("김철수"))
	assert.Equal(t, created, user.CreatedAt())
	assert.Equal(t, later, user.UpdatedAt())
	assert.Equal(t, "김철수", user.Name())

	err = user.ChangePhoneNumber("  ")
	assert.True(t, IsValidation(err))
	assert.Equal(t, "010-1234-5678", user.PhoneNumber())

	require.NoError(t, user.ChangeStatus(UserStatusSuspended))
	assert.False(t, user.CanSell())
	assert.True(t, IsValidation(user.ChangeStatus("GONE")))
}

func TestUserJSONOmitsPassword(t *testing.T) {
	user, err := NewUser(validUserInput(), nil)
	require.NoError(t, err)

	raw, err := json.Marshal(user)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "password")
	assert.Contains(t, string(raw), `"email":"test@example.com"`)
}
