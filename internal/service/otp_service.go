package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/origenhr/advance-api/internal/models"
	appErrors "github.com/origenhr/advance-api/pkg/errors"
	"github.com/origenhr/advance-api/pkg/jobs"
	"github.com/origenhr/advance-api/pkg/mailer"
)

// JobTypeOTPMail identifies queued verification-code deliveries.
const JobTypeOTPMail = "otp_mail"

type otpStore interface {
	Store(ctx context.Context, email, codeHash string) error
	Hash(ctx context.Context, email string) (string, error)
	Consume(ctx context.Context, email string) error
	RecordAttempt(ctx context.Context, email string) (int64, error)
}

type otpEmployeeResolver interface {
	FindByEmail(ctx context.Context, email string) (*models.Employee, error)
}

type mailEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// OTPConfig tunes code generation and verification.
type OTPConfig struct {
	Digits      int
	MaxAttempts int
	TTL         time.Duration
}

// OTPService issues and verifies the wizard's one-time codes. Codes are
// stored as SHA-256 hashes, expire with their TTL, and are consumed on first
// successful verification.
type OTPService struct {
	store    otpStore
	employee otpEmployeeResolver
	mail     mailEnqueuer
	logger   *zap.Logger
	config   OTPConfig
}

// OTPMailPayload is the queued delivery request handed to the mail worker.
type OTPMailPayload struct {
	Email string
	Code  string
	TTL   time.Duration
}

// NewOTPService constructs an OTPService.
func NewOTPService(store otpStore, employee otpEmployeeResolver, mail mailEnqueuer, logger *zap.Logger, config OTPConfig) *OTPService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Digits <= 0 {
		config.Digits = 6
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}
	if config.TTL <= 0 {
		config.TTL = 5 * time.Minute
	}
	return &OTPService{store: store, employee: employee, mail: mail, logger: logger, config: config}
}

// Request generates a fresh code for the email and queues its delivery.
// Unknown emails are swallowed so the endpoint cannot be used to enumerate
// the employee directory.
func (s *OTPService) Request(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return appErrors.Clone(appErrors.ErrValidation, "email is required")
	}

	if _, err := s.employee.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Info("otp requested for unknown email", zap.String("email", email))
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve employee")
	}

	code, err := s.generateCode()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate code")
	}

	if err := s.store.Store(ctx, email, hashCode(code)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store code")
	}

	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    JobTypeOTPMail,
		Payload: OTPMailPayload{Email: email, Code: code, TTL: s.config.TTL},
	}
	if err := s.mail.Enqueue(job); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue code delivery")
	}

	return nil
}

// Verify checks the submitted code against the stored hash, consuming the
// code on success. Repeated mismatches burn the code once MaxAttempts is hit.
func (s *OTPService) Verify(ctx context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return appErrors.Clone(appErrors.ErrValidation, "email and code are required")
	}

	storedHash, err := s.store.Hash(ctx, email)
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare([]byte(storedHash), []byte(hashCode(code))) != 1 {
		attempts, attemptErr := s.store.RecordAttempt(ctx, email)
		if attemptErr != nil {
			s.logger.Warn("failed to record otp attempt", zap.Error(attemptErr))
		}
		if attempts >= int64(s.config.MaxAttempts) {
			if consumeErr := s.store.Consume(ctx, email); consumeErr != nil {
				s.logger.Warn("failed to burn exhausted otp", zap.Error(consumeErr))
			}
		}
		return appErrors.ErrCodeMismatch
	}

	if err := s.store.Consume(ctx, email); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to consume code")
	}

	return nil
}

// MailHandler returns the queue handler that delivers a queued code.
func MailHandler(sender mailer.Sender, logger *zap.Logger) jobs.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, job jobs.Job) error {
		payload, ok := job.Payload.(OTPMailPayload)
		if !ok {
			logger.Error("unexpected otp mail payload", zap.String("job_id", job.ID))
			return nil
		}
		msg := mailer.Message{
			To:      payload.Email,
			Subject: "Your verification code",
			Body:    fmt.Sprintf("Your verification code is: %s\r\n\r\nIt expires in %s.", payload.Code, payload.TTL),
		}
		if err := sender.Send(msg); err != nil {
			return err
		}
		logger.Info("otp mail delivered", zap.String("email", payload.Email))
		return nil
	}
}

func (s *OTPService) generateCode() (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < s.config.Digits; i++ {
		limit.Mul(limit, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", s.config.Digits, n), nil
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
