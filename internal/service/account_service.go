package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noryangjin/auction-server/internal/auth"
	"github.com/noryangjin/auction-server/internal/config"
	"github.com/noryangjin/auction-server/internal/domain"
	"github.com/noryangjin/auction-server/internal/events"
	"github.com/noryangjin/auction-server/internal/repository"
)

// ErrInvalidCredentials is returned when an email/password pair does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// IdentityInvalidator drops cached state for an identity after its account changes.
type IdentityInvalidator interface {
	Invalidate(ctx context.Context, identity string) error
}

// AccountService coordinates registration, login and account administration.
type AccountService struct {
	users       repository.UserRepository
	identities  IdentityResolver
	invalidator IdentityInvalidator
	tokenMgr    *auth.TokenManager
	seal        domain.CredentialSealer
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// AccountDependencies encapsulates collaborators of the account service.
type AccountDependencies struct {
	UserRepo    repository.UserRepository
	Identities  IdentityResolver
	Invalidator IdentityInvalidator
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// RegisterUserInput describes a self-service sign-up.
type RegisterUserInput struct {
	Email       string
	Password    string
	Name        string
	PhoneNumber string
	Role        string
}

// NewAccountService builds the service.
func NewAccountService(cfg config.Config, deps AccountDependencies) *AccountService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	identities := deps.Identities
	if identities == nil {
		identities = NewStoreIdentityResolver(deps.UserRepo)
	}
	return &AccountService{
		users:       deps.UserRepo,
		identities:  identities,
		invalidator: deps.Invalidator,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		seal:        auth.BcryptSealer(cfg.Auth.BcryptCost),
		dispatcher:  deps.Dispatcher,
		logger:      logger,
	}
}

// Register opens a new SELLER or BIDDER account.
func (s *AccountService) Register(ctx context.Context, in RegisterUserInput) (*domain.User, error) {
	role := domain.UserRole(strings.ToUpper(strings.TrimSpace(in.Role)))
	if parsed, err := domain.ParseUserRole(in.Role); err == nil {
		role = parsed
	}
	if role.Valid() && !role.SelfRegistrable() {
		return nil, domain.NewAuthorizationError("role " + role.String() + " cannot be self-registered")
	}

	user, err := domain.NewUser(domain.NewUserInput{
		Email:       in.Email,
		Password:    in.Password,
		Name:        in.Name,
		PhoneNumber: in.PhoneNumber,
		Role:        role,
	}, s.seal)
	if err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmailOrPhone(ctx, user.Email(), user.PhoneNumber())
	switch {
	case err == nil:
		return nil, duplicateAccountError(user, existing)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, domain.NewStoreUnavailableError("find user by email or phone", err)
	}

	stored, err := s.users.Create(ctx, user)
	if err != nil {
		var dup *repository.DuplicateError
		if errors.As(err, &dup) {
			return nil, domain.NewValidationError(dup.Field, "is already registered")
		}
		return nil, domain.NewStoreUnavailableError("create user", err)
	}

	s.logger.Info("account registered", zap.Object("user", stored))
	s.publishEvent(ctx, events.Event{
		Type:      events.EventUserRegistered,
		SubjectID: stored.ID(),
		Actor:     actorOf(stored),
		Payload:   events.UserRegisteredPayload{Email: stored.Email(), Role: stored.Role()},
	})
	return stored, nil
}

// Login authenticates an account and issues an access token.
func (s *AccountService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeIdentity(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", time.Time{}, ErrInvalidCredentials
		}
		return nil, "", time.Time{}, domain.NewStoreUnavailableError("get user by email", err)
	}
	if err := auth.ComparePassword(user.Password(), password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if !user.Status().CanAct() {
		return nil, "", time.Time{}, domain.NewAuthorizationError("account is " + strings.ToLower(user.Status().String()))
	}
	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Profile returns the stored account of the caller.
func (s *AccountService) Profile(ctx context.Context, identity string) (*domain.User, error) {
	return s.identities.Resolve(ctx, identity)
}

// ProfileUpdate carries optional profile changes. Nil fields are left untouched.
type ProfileUpdate struct {
	Name        *string
	PhoneNumber *string
}

// UpdateProfile changes the caller's display name and contact number.
func (s *AccountService) UpdateProfile(ctx context.Context, identity string, in ProfileUpdate) (*domain.User, error) {
	user, err := s.identities.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}

	verr := &domain.ValidationError{}
	if in.Name != nil {
		if err := user.Rename(*in.Name); err != nil {
			verr.Violations = append(verr.Violations, err.(*domain.ValidationError).Violations...)
		}
	}
	if in.PhoneNumber != nil {
		if err := user.ChangePhoneNumber(*in.PhoneNumber); err != nil {
			verr.Violations = append(verr.Violations, err.(*domain.ValidationError).Violations...)
		}
	}
	if len(verr.Violations) > 0 {
		return nil, verr
	}
	if in.Name == nil && in.PhoneNumber == nil {
		return user, nil
	}

	stored, err := s.save(ctx, "update profile", user, s.users.UpdateProfile)
	if err != nil {
		return nil, err
	}
	s.logger.Info("profile updated", zap.Object("user", stored))
	return stored, nil
}

// ChangePassword replaces the caller's password after checking the current one.
// The credential is read from the store; cached accounts do not carry it.
func (s *AccountService) ChangePassword(ctx context.Context, identity, current, next string) error {
	identity = NormalizeIdentity(identity)
	if identity == "" {
		return domain.NewAuthorizationError("caller identity is missing")
	}
	user, err := s.users.GetByEmail(ctx, identity)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NewAuthorizationError("unknown account")
		}
		return domain.NewStoreUnavailableError("get user by email", err)
	}
	if err := auth.ComparePassword(user.Password(), current); err != nil {
		return ErrInvalidCredentials
	}
	if strings.TrimSpace(next) == "" {
		return domain.NewValidationError(domain.FieldPassword, "is required")
	}
	sealed, err := s.seal(next)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(sealed); err != nil {
		return err
	}
	if _, err := s.save(ctx, "update password", user, s.users.UpdatePassword); err != nil {
		return err
	}
	s.logger.Info("password changed", zap.String("user_id", user.ID()))
	return nil
}

// ChangeStatus lets an active admin suspend, reactivate or withdraw an account.
func (s *AccountService) ChangeStatus(ctx context.Context, admin *domain.User, userID, rawStatus string) (*domain.User, error) {
	if admin == nil || admin.Role() != domain.RoleAdmin || !admin.Status().CanAct() {
		return nil, domain.NewAuthorizationError("admin role required")
	}
	status, err := domain.ParseUserStatus(rawStatus)
	if err != nil {
		return nil, domain.NewValidationError(domain.FieldStatus, "is invalid")
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, repository.ErrNotFound
	}

	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, domain.NewStoreUnavailableError("get user by id", err)
	}

	oldStatus := target.Status()
	if err := target.ChangeStatus(status); err != nil {
		return nil, err
	}
	if oldStatus == status {
		return target, nil
	}
	target, err = s.save(ctx, "update status", target, s.users.UpdateStatus)
	if err != nil {
		return nil, err
	}

	s.logger.Info("account status changed",
		zap.Object("user", target),
		zap.String("old_status", oldStatus.String()),
		zap.String("changed_by", admin.ID()))
	s.publishEvent(ctx, events.Event{
		Type:      events.EventUserStatusChanged,
		SubjectID: target.ID(),
		Actor:     actorOf(admin),
		Payload:   events.UserStatusChangedPayload{OldStatus: oldStatus, NewStatus: status},
	})
	return target, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AccountService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// save runs one column-targeted write and drops the cached account afterwards.
func (s *AccountService) save(ctx context.Context, op string, user *domain.User,
	write func(context.Context, *domain.User) (*domain.User, error)) (*domain.User, error) {
	stored, err := write(ctx, user)
	if err != nil {
		var dup *repository.DuplicateError
		switch {
		case errors.As(err, &dup):
			return nil, domain.NewValidationError(dup.Field, "is already registered")
		case errors.Is(err, repository.ErrNotFound):
			return nil, err
		default:
			return nil, domain.NewStoreUnavailableError(op, err)
		}
	}
	s.invalidate(ctx, stored.Email())
	return stored, nil
}

func (s *AccountService) invalidate(ctx context.Context, identity string) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx, identity); err != nil {
		s.logger.Warn("identity cache invalidation failed", zap.String("identity", identity), zap.Error(err))
	}
}

func (s *AccountService) publishEvent(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, s.logger, event)
}

func duplicateAccountError(candidate, existing *domain.User) error {
	verr := &domain.ValidationError{}
	if existing.Email() == candidate.Email() {
		verr.Violations = append(verr.Violations, domain.FieldViolation{Field: domain.FieldEmail, Message: "is already registered"})
	}
	if existing.PhoneNumber() == candidate.PhoneNumber() {
		verr.Violations = append(verr.Violations, domain.FieldViolation{Field: domain.FieldPhoneNumber, Message: "is already registered"})
	}
	if len(verr.Violations) == 0 {
		verr.Violations = append(verr.Violations, domain.FieldViolation{Field: domain.FieldEmail, Message: "is already registered"})
	}
	return verr
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func actorOf(user *domain.User) events.Actor {
	return events.Actor{UserID: user.ID(), Role: user.Role()}
}
