package domain

import (
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// Field names reported in validation errors for accounts.
const (
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldName        = "name"
	FieldPhoneNumber = "phone_number"
	FieldRole        = "role"
	FieldStatus      = "status"
)

// now is the clock used for entity timestamps. Postgres keeps microseconds, so values are
// truncated to survive a storage round-trip unchanged.
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// CredentialSealer turns a raw password into the credential that is stored.
type CredentialSealer func(plain string) (string, error)

// NewUserInput carries the fields required to open an account.
type NewUserInput struct {
	Email       string
	Password    string
	Name        string
	PhoneNumber string
	Role        UserRole
}

// UserSnapshot is the flat, trusted record of a stored account.
type UserSnapshot struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	Name        string     `json:"name"`
	PhoneNumber string     `json:"phone_number"`
	Role        UserRole   `json:"role"`
	Status      UserStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// User is a marketplace account. Values are only obtainable through NewUser or RestoreUser.
type User struct {
	id          string
	email       string
	password    string
	name        string
	phoneNumber string
	role        UserRole
	status      UserStatus
	createdAt   time.Time
	updatedAt   time.Time
}

// NewUser validates the input and opens a new, not yet persisted, ACTIVE account.
//
// Every violated field is reported, in the order email, password, name, phone number, role.
// The message of the returned error names the first one. When seal is non-nil it is applied
// to the password after validation succeeds.
func NewUser(in NewUserInput, seal CredentialSealer) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.PhoneNumber)

	var errs violations
	if email == "" {
		errs.add(FieldEmail, "is required")
	}
	if strings.TrimSpace(in.Password) == "" {
		errs.add(FieldPassword, "is required")
	}
	if name == "" {
		errs.add(FieldName, "is required")
	}
	if phone == "" {
		errs.add(FieldPhoneNumber, "is required")
	}
	switch {
	case in.Role == "":
		errs.add(FieldRole, "is required")
	case !in.Role.Valid():
		errs.add(FieldRole, "is invalid")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	credential := in.Password
	if seal != nil {
		sealed, err := seal(in.Password)
		if err != nil {
			return nil, err
		}
		credential = sealed
	}

	createdAt := now()
	return &User{
		email:       email,
		password:    credential,
		name:        name,
		phoneNumber: phone,
		role:        in.Role,
		status:      UserStatusActive,
		createdAt:   createdAt,
		updatedAt:   createdAt,
	}, nil
}

// RestoreUser rebuilds an account from stored values without re-validating them.
func RestoreUser(s UserSnapshot) *User {
	return &User{
		id:          s.ID,
		email:       s.Email,
		password:    s.Password,
		name:        s.Name,
		phoneNumber: s.PhoneNumber,
		role:        s.Role,
		status:      s.Status,
		createdAt:   s.CreatedAt,
		updatedAt:   s.UpdatedAt,
	}
}

// Snapshot returns the account as a flat record.
func (u *User) Snapshot() UserSnapshot {
	return UserSnapshot{
		ID:          u.id,
		Email:       u.email,
		Password:    u.password,
		Name:        u.name,
		PhoneNumber: u.phoneNumber,
		Role:        u.role,
		Status:      u.status,
		CreatedAt:   u.createdAt,
		UpdatedAt:   u.updatedAt,
	}
}

func (u *User) ID() string { return u.id }
func (u *User) Email() string { return u.email }
func (u *User) Password() string { return u.password }
func (u *User) Name() string { return u.name }
func (u *User) PhoneNumber() string { return u.phoneNumber }
func (u *User) Role() UserRole { return u.role }
func (u *User) Status() UserStatus { return u.status }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }
func (u *User) IsPersisted() bool { return u.id != "" }

// CanSell reports whether the account may currently register listings.
func (u *User) CanSell() bool {
	return u.role.CanSell() && u.status.CanAct()
}

// Rename replaces the display name.
func (u *User) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return NewValidationError(FieldName, "is required")
	}
	u.name = name
	u.touch()
	return nil
}

// ChangePhoneNumber replaces the contact number. Uniqueness is checked by the store.
func (u *User) ChangePhoneNumber(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return NewValidationError(FieldPhoneNumber, "is required")
	}
	u.phoneNumber = phone
	u.touch()
	return nil
}

// ChangePassword replaces the stored credential.
func (u *User) ChangePassword(credential string) error {
	if strings.TrimSpace(credential) == "" {
		return NewValidationError(FieldPassword, "is required")
	}
	u.password = credential
	u.touch()
	return nil
}

// ChangeStatus moves the account to another lifecycle state.
func (u *User) ChangeStatus(status UserStatus) error {
	if !status.Valid() {
		return NewValidationError(FieldStatus, "is invalid")
	}
	if u.status == status {
		return nil
	}
	u.status = status
	u.touch()
	return nil
}

func (u *User) touch() {
	t := now()
	if t.Before(u.createdAt) {
		t = u.createdAt
	}
	u.updatedAt = t
}

type userView struct {
	ID          string     `json:"id,omitempty"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	PhoneNumber string     `json:"phone_number"`
	Role        UserRole   `json:"role"`
	Status      UserStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// MarshalJSON encodes the public account fields. The credential is never included.
func (u *User) MarshalJSON() ([]byte, error) {
	return json.Marshal(userView{
		ID:          u.id,
		Email:       u.email,
		Name:        u.name,
		PhoneNumber: u.phoneNumber,
		Role:        u.role,
		Status:      u.status,
		CreatedAt:   u.createdAt,
		UpdatedAt:   u.updatedAt,
	})
}

// MarshalLogObject lets the account be logged with zap.Object without its credential.
func (u *User) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("id", u.id)
	enc.AddString("email", u.email)
	enc.AddString("role", string(u.role))
	enc.AddString("status", string(u.status))
	return nil
}
