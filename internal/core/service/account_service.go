package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/cloudnative/account-service/internal/core/domain"
	"github.com/cloudnative/account-service/internal/core/ports"
)

// VerifiedMessage is returned by a successful VerifyEmail.
const VerifiedMessage = "Email successfully verified!"

const (
	DefaultVerificationTopic = "user-verification"
	outcomeOK                = "ok"
)

// AccountServiceConfig holds the tunables of the lifecycle service.
type AccountServiceConfig struct {
	// VerificationTopic is the topic verification events are published on.
	VerificationTopic string
	// VerifyBaseURL is the public address of the verify endpoint. The token is
	// appended as a query parameter in published events.
	VerifyBaseURL string
}

// verificationEvent is the payload consumed by the mailer.
type verificationEvent struct {
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	VerifyURL string    `json:"verify_url,omitempty"`
}

type accountService struct {
	accounts  ports.AccountRepository
	ledger    ports.TokenLedger
	pictures  ports.ProfileAssetManager
	hasher    ports.PasswordHasher
	publisher ports.NotificationPublisher
	obs       ports.Observer
	cfg       AccountServiceConfig
	log       zerolog.Logger
	now       func() time.Time
}

// NewAccountService returns the account lifecycle service.
func NewAccountService(
	accounts ports.AccountRepository,
	ledger ports.TokenLedger,
	pictures ports.ProfileAssetManager,
	hasher ports.PasswordHasher,
	publisher ports.NotificationPublisher,
	obs ports.Observer,
	cfg AccountServiceConfig,
	log zerolog.Logger,
) ports.AccountService {
	if cfg.VerificationTopic == "" {
		cfg.VerificationTopic = DefaultVerificationTopic
	}
	return &accountService{
		accounts:  accounts,
		ledger:    ledger,
		pictures:  pictures,
		hasher:    hasher,
		publisher: publisher,
		obs:       obs,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// Register creates an unverified account and starts email verification.
// Failures after the account is persisted are logged, never returned.
func (s *accountService) Register(ctx context.Context, in ports.RegisterInput) (_ *domain.Account, err error) {
	defer s.track("register", time.Now(), &err)

	if in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	exists, err := s.accounts.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		s.log.Warn().Str("email", in.Email).Msg("registration for existing email rejected")
		return nil, domain.ErrAccountExists
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.accounts.Create(ctx, &domain.Account{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("email", created.Email).Msg("account created")

	if err := s.startVerification(ctx, created.Email); err != nil {
		s.obs.Inconsistency("missing_verification_token")
		s.log.Error().Err(err).Str("email", created.Email).Msg("account created without verification token")
	}

	return created, nil
}

// GetSelf returns the caller's own account regardless of verification state.
func (s *accountService) GetSelf(ctx context.Context, id ports.Identity) (_ *domain.Account, err error) {
	defer s.track("get_self", time.Now(), &err)

	account, err := s.resolve(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get self: %w", err)
	}
	return account, nil
}

// UpdateSelf applies a partial update to a verified account.
func (s *accountService) UpdateSelf(ctx context.Context, id ports.Identity, in ports.UpdateSelfInput) (_ *domain.Account, err error) {
	defer s.track("update_self", time.Now(), &err)

	if in.FirstName == nil && in.LastName == nil && in.Password == nil {
		return nil, domain.ErrNoUpdateFields
	}
	if in.Email != nil && *in.Email != id.Email {
		return nil, domain.ErrEmailImmutable
	}

	account, err := s.resolve(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update self: %w", err)
	}
	if !account.Verified {
		return nil, domain.ErrNotVerified
	}

	if in.FirstName != nil {
		account.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		account.LastName = *in.LastName
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("update self: hash password: %w", err)
		}
		account.PasswordHash = hash
	}

	account.Touch(s.now().UTC())
	if err := s.accounts.UpdateProfile(ctx, account); err != nil {
		return nil, fmt.Errorf("update self: %w", err)
	}

	s.log.Info().Str("email", account.Email).Msg("account updated")
	return account, nil
}

// VerifyEmail consumes token and marks its account verified. A token can be
// consumed once; every later attempt fails with ErrTokenUsed.
func (s *accountService) VerifyEmail(ctx context.Context, token string) (_ string, err error) {
	defer s.track("verify_email", time.Now(), &err)

	if token == "" {
		return "", domain.ErrInvalidToken
	}

	record, err := s.ledger.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			s.log.Warn().Msg("verification with unknown token")
			return "", domain.ErrInvalidToken
		}
		return "", fmt.Errorf("verify email: %w", err)
	}

	now := s.now().UTC()
	if record.Status != domain.TokenPending {
		return "", domain.ErrTokenUsed
	}
	if record.ExpiredAt(now) {
		s.log.Warn().Str("email", record.Email).Msg("verification token expired")
		return "", domain.ErrTokenExpired
	}

	account, err := s.accounts.FindByEmail(ctx, record.Email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.log.Error().Str("email", record.Email).Msg("verification token without account")
			return "", domain.ErrTokenUserNotFound
		}
		return "", fmt.Errorf("verify email: %w", err)
	}

	if err := s.accounts.MarkVerified(ctx, account.Email, now); err != nil {
		return "", fmt.Errorf("verify email: %w", err)
	}
	account.Verified = true
	account.Touch(now)

	if err := s.ledger.MarkVerified(ctx, record.Token); err != nil {
		if errors.Is(err, domain.ErrTokenUsed) {
			return "", domain.ErrTokenUsed
		}
		return "", fmt.Errorf("verify email: retire token: %w", err)
	}

	s.log.Info().Str("email", account.Email).Msg("email verified")
	return VerifiedMessage, nil
}

// ResendVerification issues a fresh token for an unverified account.
func (s *accountService) ResendVerification(ctx context.Context, id ports.Identity) (err error) {
	defer s.track("resend_verification", time.Now(), &err)

	account, err := s.resolve(ctx, id)
	if err != nil {
		return fmt.Errorf("resend verification: %w", err)
	}
	if account.Verified {
		return domain.ErrAlreadyVerified
	}

	if err := s.startVerification(ctx, account.Email); err != nil {
		return fmt.Errorf("resend verification: %w", err)
	}
	return nil
}

func (s *accountService) UploadPicture(ctx context.Context, id ports.Identity, in ports.UploadInput) (_ *domain.ProfileAsset, err error) {
	defer s.track("upload_picture", time.Now(), &err)

	account, err := s.resolve(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("upload picture: %w", err)
	}
	return s.pictures.Upload(ctx, account, in)
}

func (s *accountService) GetPicture(ctx context.Context, id ports.Identity) (_ *domain.ProfileAsset, err error) {
	defer s.track("get_picture", time.Now(), &err)

	account, err := s.resolve(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get picture: %w", err)
	}
	return s.pictures.Get(ctx, account)
}

func (s *accountService) DeletePicture(ctx context.Context, id ports.Identity) (err error) {
	defer s.track("delete_picture", time.Now(), &err)

	account, err := s.resolve(ctx, id)
	if err != nil {
		return fmt.Errorf("delete picture: %w", err)
	}
	return s.pictures.Delete(ctx, account)
}

// resolve maps an identity claim to its account. An unknown claim is
// ErrUnauthorized rather than ErrAccountNotFound.
func (s *accountService) resolve(ctx context.Context, id ports.Identity) (*domain.Account, error) {
	if id.Email == "" {
		return nil, domain.ErrUnauthorized
	}
	account, err := s.accounts.FindByEmail(ctx, id.Email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return account, nil
}

// startVerification issues a token and publishes the verification event. Only
// a failure to issue the token is returned; publish failures are logged.
func (s *accountService) startVerification(ctx context.Context, email string) error {
	token, err := s.ledger.Issue(ctx, email)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(verificationEvent{
		Email:     email,
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		VerifyURL: s.verifyURL(token.Token),
	})
	if err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("failed to encode verification event")
		return nil
	}

	if err := s.publisher.Publish(ctx, s.cfg.VerificationTopic, payload); err != nil {
		s.log.Error().Err(err).
			Str("email", email).
			Str("topic", s.cfg.VerificationTopic).
			Msg("failed to publish verification event")
		return nil
	}

	s.log.Info().Str("email", email).Str("topic", s.cfg.VerificationTopic).Msg("verification event published")
	return nil
}

func (s *accountService) verifyURL(token string) string {
	if s.cfg.VerifyBaseURL == "" {
		return ""
	}
	return s.cfg.VerifyBaseURL + "?token=" + url.QueryEscape(token)
}

func (s *accountService) track(op string, start time.Time, err *error) {
	outcome := outcomeOK
	if *err != nil {
		outcome = string(domain.KindOf(*err))
	}
	s.obs.Operation(op, outcome, time.Since(start))
}
