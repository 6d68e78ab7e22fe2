package divide

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domshopping "example.com/divide-account/internal/domain/shopping"
	domsplit "example.com/divide-account/internal/domain/split"
)

type SplitRepository interface {
	Create(ctx context.Context, s *domsplit.Split) (*domsplit.Split, error)
}

type Notifier interface {
	NotifyShare(ctx context.Context, share domsplit.Share, alloc domsplit.Allocation) error
}

type Metrics interface {
	SplitComputed(alloc domsplit.Allocation)
	ValidationFailed(verr *domshopping.ValidationError)
	NotificationSent(err error)
}

type Input struct {
	Items  []domshopping.RawItem
	Emails []any
	Notify bool
}

type Service struct {
	validator *Validator
	splits    SplitRepository
	notifier  Notifier
	metrics   Metrics
}

func NewService(validator *Validator, splits SplitRepository, notifier Notifier, metrics Metrics) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Service{
		validator: validator,
		splits:    splits,
		notifier:  notifier,
		metrics:   metrics,
	}
}

// Validate runs validation only.
func (s *Service) Validate(in Input) error {
	_, _, err := s.validator.Validate(in.Items, in.Emails)
	s.observeValidation(err)
	return err
}

// Divide validates the input, divides the total, records the result and,
// when asked, notifies every recipient of their share. A failed
// notification is logged but does not fail the split.
func (s *Service) Divide(ctx context.Context, in Input) (*domsplit.Split, error) {
	items, emails, err := s.validator.Validate(in.Items, in.Emails)
	if err != nil {
		s.observeValidation(err)
		return nil, err
	}

	alloc := Divide(items, emails)
	slog.Debug("split computed",
		"total", alloc.Total,
		"recipients", len(alloc.Shares),
		"base_share", alloc.BaseShare,
		"remainder", alloc.Remainder,
	)

	recorded, err := s.splits.Create(ctx, &domsplit.Split{Allocation: alloc})
	if err != nil {
		return nil, fmt.Errorf("record split: %w", err)
	}
	s.metrics.SplitComputed(alloc)

	if in.Notify {
		s.notifyAll(ctx, recorded)
	}
	return recorded, nil
}

func (s *Service) notifyAll(ctx context.Context, rec *domsplit.Split) {
	for _, share := range rec.Allocation.Shares {
		err := s.notifier.NotifyShare(ctx, share, rec.Allocation)
		s.metrics.NotificationSent(err)
		if err != nil {
			slog.Warn("share notification failed",
				"split_id", rec.ID,
				"email", share.Email,
				"error", err,
			)
		}
	}
}

func (s *Service) observeValidation(err error) {
	var verr *domshopping.ValidationError
	if errors.As(err, &verr) {
		s.metrics.ValidationFailed(verr)
	}
}

type NopNotifier struct{}

func (NopNotifier) NotifyShare(context.Context, domsplit.Share, domsplit.Allocation) error {
	return nil
}

type NopMetrics struct{}

func (NopMetrics) SplitComputed(domsplit.Allocation)              {}
func (NopMetrics) ValidationFailed(*domshopping.ValidationError) {}
func (NopMetrics) NotificationSent(error)                         {}
