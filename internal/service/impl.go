package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stacklok/event-registration-server/internal/registration"
	"github.com/stacklok/event-registration-server/internal/store"
	"github.com/stacklok/event-registration-server/internal/telemetry"
)

// Option configures the registration service
type Option func(*registrationService)

// WithStrictValidation enables the email, phone and name format checks
func WithStrictValidation(strict bool) Option {
	return func(s *registrationService) {
		s.strict = strict
	}
}

// WithMetrics sets the registration metrics. Nil disables them.
func WithMetrics(m *telemetry.RegistrationMetrics) Option {
	return func(s *registrationService) {
		s.metrics = m
	}
}

type registrationService struct {
	store   store.Store
	strict  bool
	metrics *telemetry.RegistrationMetrics
}

var _ RegistrationService = (*registrationService)(nil)

// New creates a registration service backed by st
func New(st store.Store, opts ...Option) (RegistrationService, error) {
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}

	s := &registrationService{store: st}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register implements RegistrationService.Register
func (s *registrationService) Register(ctx context.Context, body []byte) error {
	intake, err := registration.ParseIntake(body)
	if err != nil {
		s.metrics.RecordRegistration(ctx, telemetry.ResultInvalid)
		return err
	}

	rec := intake.Normalize()
	if s.strict {
		if err := registration.ValidateStrict(rec); err != nil {
			s.metrics.RecordRegistration(ctx, telemetry.ResultInvalid)
			return err
		}
	}

	if err := s.store.Append(ctx, rec); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			slog.InfoContext(ctx, "Rejected duplicate registration", "email", rec.Email)
			s.metrics.RecordRegistration(ctx, telemetry.ResultDuplicate)
		} else {
			slog.ErrorContext(ctx, "Failed to store registration", "email", rec.Email, "error", err)
			s.metrics.RecordRegistration(ctx, telemetry.ResultError)
		}
		return fmt.Errorf("%w: %w", ErrDuplicateOrSave, err)
	}

	slog.InfoContext(ctx, "Registration accepted", "email", rec.Email, "branch", rec.Branch, "year", rec.Year)
	s.metrics.RecordRegistration(ctx, telemetry.ResultAccepted)
	return nil
}

// ListRegistrations implements RegistrationService.ListRegistrations
func (s *registrationService) ListRegistrations(ctx context.Context) ([]registration.Record, error) {
	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registrations: %w", err)
	}
	if records == nil {
		records = []registration.Record{}
	}
	s.metrics.RecordStoredTotal(ctx, int64(len(records)))
	return records, nil
}

// ExportCSV implements RegistrationService.ExportCSV
func (s *registrationService) ExportCSV(ctx context.Context) ([]byte, error) {
	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registrations: %w", err)
	}

	data, err := registration.ExportCSV(records)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordExport(ctx, len(records))
	return data, nil
}

// Stats implements RegistrationService.Stats
func (s *registrationService) Stats(ctx context.Context) (*registration.Stats, error) {
	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registrations: %w", err)
	}

	stats := registration.ComputeStats(records)
	return &stats, nil
}

// CheckReadiness reports whether the store can be read
func (s *registrationService) CheckReadiness(ctx context.Context) error {
	if _, err := s.store.LoadAll(ctx); err != nil {
		return fmt.Errorf("store not ready: %w", err)
	}
	return nil
}
