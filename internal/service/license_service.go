package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// licenseStore is the persistence surface the licensing flow needs
type licenseStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateUserHwid(ctx context.Context, userID int64, hwid string) (*models.User, error)
	UserOwnsProduct(ctx context.Context, userID, productID int64) (bool, error)
	CreateHwidLog(ctx context.Context, log *models.HwidLog) error
	HasActiveHwidLog(ctx context.Context, userID, productID int64) (bool, error)
	GetHwidLogsByUserID(ctx context.Context, userID int64) ([]models.HwidLog, error)
}

// licenseEventPublisher publishes licensing events (best-effort)
type licenseEventPublisher interface {
	PublishLicenseActivated(ctx context.Context, event *models.LicenseActivatedEvent) error
	PublishLicenseValidationFailed(ctx context.Context, event *models.LicenseValidationFailedEvent) error
}

// LicenseService implements hardware-id license binding: registration
// of a fingerprint on the user, activation of a purchased product
// against it, and validation of the resulting triple. Activation
// checks product ownership itself; handlers do not.
type LicenseService struct {
	store  licenseStore
	events licenseEventPublisher
	logger *zap.Logger
}

// NewLicenseService creates a new license service
func NewLicenseService(store licenseStore, events licenseEventPublisher) *LicenseService {
	return &LicenseService{
		store:  store,
		events: events,
		logger: util.GetLogger(),
	}
}

// RegisterHwid overwrites the user's stored hardware fingerprint.
// Registering is not an activation: it records the fingerprint and
// nothing else. Re-registering the same value is idempotent; prior
// values are not kept.
func (s *LicenseService) RegisterHwid(ctx context.Context, userID int64, hwid string) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "LicenseService.RegisterHwid")
	defer span.End()

	if hwid == "" {
		return nil, invalidField("hwid", "must not be empty")
	}

	user, err := s.store.UpdateUserHwid(ctx, userID, hwid)
	if err != nil {
		return nil, err
	}

	util.HwidRegistrationsTotal.Inc()
	s.logger.Info("Hwid registered", zap.Int64("user_id", userID))
	return user, nil
}

// ActivateHwid records an activation of a purchased product against a
// hardware id. The user must own the product through a non-cancelled
// order; otherwise the call fails with ErrForbidden and no log row is
// written. Repeated activations append rows, they are a history rather
// than a single current-state record.
func (s *LicenseService) ActivateHwid(ctx context.Context, userID, productID int64, hwid string) (*models.HwidLog, error) {
	ctx, span := util.StartSpan(ctx, "LicenseService.ActivateHwid")
	defer span.End()

	if hwid == "" {
		return nil, invalidField("hwid", "must not be empty")
	}

	owns, err := s.store.UserOwnsProduct(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to check product ownership: %w", err)
	}
	if !owns {
		util.LicenseActivationsRejectedTotal.WithLabelValues("not_owned").Inc()
		return nil, fmt.Errorf("user %d does not own product %d: %w", userID, productID, ErrForbidden)
	}

	log := &models.HwidLog{
		UserID:    userID,
		ProductID: productID,
		Hwid:      hwid,
		Status:    models.HwidStatusActive, // always stamped active
	}
	if err := s.store.CreateHwidLog(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to create hwid log: %w", err)
	}

	util.LicenseActivationsTotal.Inc()
	s.logger.Info("Hwid activated",
		zap.Int64("user_id", userID),
		zap.Int64("product_id", productID))

	event := &models.LicenseActivatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeLicenseActivated,
			Timestamp: time.Now(),
		},
		UserID:    userID,
		ProductID: productID,
		Hwid:      hwid,
		LogID:     log.ID,
	}
	if err := s.events.PublishLicenseActivated(ctx, event); err != nil {
		s.logger.Error("Failed to publish LicenseActivated event", zap.Error(err))
	}

	return log, nil
}

// ValidateHwid reports whether the (user, hwid, product) triple is
// authorized. It fails closed: a missing user or a fingerprint that
// does not equal the stored one returns false without touching the
// activation log.
func (s *LicenseService) ValidateHwid(ctx context.Context, userID, productID int64, hwid string) (bool, error) {
	ctx, span := util.StartSpan(ctx, "LicenseService.ValidateHwid")
	defer span.End()

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// fails closed, an unknown user is simply not valid
			s.recordValidationFailure(ctx, userID, productID, hwid, "user_not_found")
			return false, nil
		}
		return false, err
	}

	if user.Hwid == "" || user.Hwid != hwid {
		s.recordValidationFailure(ctx, userID, productID, hwid, "hwid_mismatch")
		return false, nil
	}

	active, err := s.store.HasActiveHwidLog(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("failed to check activation log: %w", err)
	}
	if !active {
		s.recordValidationFailure(ctx, userID, productID, hwid, "no_active_license")
		return false, nil
	}

	util.LicenseValidationsTotal.WithLabelValues("valid").Inc()
	return true, nil
}

// ActivationHistory returns the user's activation log, newest first
func (s *LicenseService) ActivationHistory(ctx context.Context, userID int64) ([]models.HwidLog, error) {
	return s.store.GetHwidLogsByUserID(ctx, userID)
}

func (s *LicenseService) recordValidationFailure(ctx context.Context, userID, productID int64, hwid, reason string) {
	util.LicenseValidationsTotal.WithLabelValues(reason).Inc()

	event := &models.LicenseValidationFailedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeLicenseValidationFailed,
			Timestamp: time.Now(),
		},
		UserID:    userID,
		ProductID: productID,
		Hwid:      hwid,
		Reason:    reason,
	}
	if err := s.events.PublishLicenseValidationFailed(ctx, event); err != nil {
		s.logger.Error("Failed to publish LicenseValidationFailed event", zap.Error(err))
	}
}
