package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"library-api/config"
	"library-api/i18n"
	"library-api/models"
	"library-api/statemachine"
	"library-api/store"
)

// ExtensionPeriod is how far one extension moves the due date.
const ExtensionPeriod = 7 * 24 * time.Hour

type Options struct {
	Policies       config.Policies
	ReminderWindow time.Duration
	UpcomingWindow time.Duration
	Clock          func() time.Time
	Logger         *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.ReminderWindow <= 0 {
		o.ReminderWindow = 5 * 24 * time.Hour
	}
	if o.UpcomingWindow <= 0 {
		o.UpcomingWindow = 12 * 24 * time.Hour
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Reservations is the reservation workflow. Each call is a short read or
// read-then-write against the store with no locking: concurrent extends of
// one reservation race and the last write wins.
type Reservations struct {
	store Store
	opts  Options
	log   *zap.Logger
}

func NewReservations(s Store, opts Options) *Reservations {
	opts = opts.withDefaults()
	return &Reservations{store: s, opts: opts, log: opts.Logger.Named("reservations")}
}

// Policies reports which optional invariants are enforced.
func (s *Reservations) Policies() config.Policies {
	return s.opts.Policies
}

func (s *Reservations) now() time.Time {
	return s.opts.Clock().UTC()
}

// ParseReservationID converts a raw path value to a reservation id. Anything
// that is not a positive integer is rejected.
func ParseReservationID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, &Error{Kind: KindInvalidArgument, Message: InvalidReservationIDMessage, Err: err}
	}
	return id, nil
}

// ParseDueDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func ParseDueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ExtendReservation pushes the due date of reservation id back by
// ExtensionPeriod and flags it as extended. Unless the single-use policy is
// on, a reservation can be extended any number of times.
func (s *Reservations) ExtendReservation(ctx context.Context, id int64, tr *i18n.Translator) (*models.Reservation, error) {
	if id <= 0 {
		return nil, &Error{Kind: KindInvalidArgument, Message: InvalidReservationIDMessage}
	}

	r, err := s.store.GetReservationWithBook(ctx, id)
	if err != nil {
		return nil, s.loadFailure(tr, i18n.KeyReservationNotFound, err)
	}

	if s.opts.Policies.SingleUseExtension {
		if r.Extended {
			return nil, fail(KindConflict, tr, i18n.KeyReservationAlreadyExtend, nil)
		}
		if err := statemachine.CanTransition(r.Status, models.StatusExtended, statemachine.ActorCustomer); err != nil {
			return nil, fail(KindInvalidTransition, tr, i18n.KeyReservationInvalidStatus, err)
		}
	}

	due := r.DueDate.Add(ExtensionPeriod)
	if err := s.store.UpdateReservation(ctx, id, map[string]any{
		"due_date": due,
		"extended": true,
	}); err != nil {
		s.log.Warn("extend reservation failed", zap.Int64("reservation_id", id), zap.Error(err))
		return nil, fail(KindUpdateFailed, tr, i18n.KeyReservationExtendFailed, err)
	}

	updated, err := s.store.GetReservationWithBook(ctx, id)
	if err != nil {
		return nil, s.loadFailure(tr, i18n.KeyReservationNotFound, err)
	}
	s.log.Info("reservation extended",
		zap.Int64("reservation_id", id),
		zap.Time("previous_due_date", r.DueDate),
		zap.Time("due_date", updated.DueDate),
	)
	return updated, nil
}

// ReserveBook creates an active reservation of bookID for viewer. With the
// availability policy on, it refuses books without copies left and takes one
// copy; otherwise copies are not touched.
func (s *Reservations) ReserveBook(ctx context.Context, viewer string, bookID int64, dueDate string, tr *i18n.Translator) (*models.Reservation, error) {
	if viewer == "" {
		return nil, fail(KindNotAuthenticated, tr, i18n.KeyNotAuthenticated, nil)
	}
	due, err := ParseDueDate(dueDate)
	if err != nil {
		return nil, fail(KindInvalidArgument, tr, i18n.KeyReservationInvalidDueDate, err)
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, s.loadFailure(tr, i18n.KeyBookNotFound, err)
	}

	enforce := s.opts.Policies.EnforceAvailability
	if enforce {
		if book.AvailableCopies <= 0 {
			return nil, fail(KindConflict, tr, i18n.KeyBookUnavailable, store.ErrNoCopiesAvailable)
		}
		if err := s.store.AdjustAvailableCopies(ctx, book.ID, -1); err != nil {
			if errors.Is(err, store.ErrNoCopiesAvailable) {
				return nil, fail(KindConflict, tr, i18n.KeyBookUnavailable, err)
			}
			return nil, fail(KindStore, tr, i18n.KeyReservationCreateFailed, err)
		}
		book.AvailableCopies--
	}

	r := &models.Reservation{
		UserID:          viewer,
		BookID:          book.ID,
		ReservationDate: s.now(),
		DueDate:         due,
		Status:          models.StatusActive,
	}
	if err := s.store.CreateReservation(ctx, r); err != nil {
		s.log.Warn("create reservation failed", zap.Int64("book_id", bookID), zap.Error(err))
		if enforce {
			if restoreErr := s.store.AdjustAvailableCopies(ctx, book.ID, 1); restoreErr != nil {
				s.log.Error("restore available copies failed", zap.Int64("book_id", book.ID), zap.Error(restoreErr))
			}
		}
		return nil, fail(KindStore, tr, i18n.KeyReservationCreateFailed, err)
	}
	r.Book = book

	s.log.Info("book reserved",
		zap.Int64("reservation_id", r.ID),
		zap.Int64("book_id", book.ID),
		zap.String("user_id", viewer),
		zap.Time("due_date", due),
	)
	return r, nil
}

// GetAllBorrowedBooks is the librarian's borrowed-books listing. Callers
// that are not signed in or not librarians get nil and an error without the
// aggregation running. An aggregation failure is reported as a
// *PartialFailure with an empty, non-nil payload.
func (s *Reservations) GetAllBorrowedBooks(ctx context.Context, viewer string, tr *i18n.Translator) ([]models.BorrowedBook, error) {
	if _, err := s.requireLibrarian(ctx, viewer, tr); err != nil {
		return nil, err
	}

	rows, err := s.store.GetAllBorrowedBooks(ctx)
	if err != nil {
		s.log.Warn("borrowed books aggregation failed", zap.Error(err))
		empty := []models.BorrowedBook{}
		return empty, &PartialFailure[[]models.BorrowedBook]{
			Payload: empty,
			Message: tr.T(i18n.KeyBorrowedFetchFailed),
			Cause:   err,
		}
	}
	return rows, nil
}

// GetDueDateNotifications lists the viewer's reservations due within the
// reminder window that have not been reminded yet.
func (s *Reservations) GetDueDateNotifications(ctx context.Context, viewer string, tr *i18n.Translator) ([]models.Reservation, error) {
	return s.dueWithin(ctx, viewer, s.opts.ReminderWindow, tr)
}

// ListUpcomingDue is GetDueDateNotifications over the longer upcoming window.
func (s *Reservations) ListUpcomingDue(ctx context.Context, viewer string, tr *i18n.Translator) ([]models.Reservation, error) {
	return s.dueWithin(ctx, viewer, s.opts.UpcomingWindow, tr)
}

func (s *Reservations) dueWithin(ctx context.Context, viewer string, window time.Duration, tr *i18n.Translator) ([]models.Reservation, error) {
	if viewer == "" {
		return nil, fail(KindNotAuthenticated, tr, i18n.KeyNotAuthenticated, nil)
	}
	from := s.now()
	due, err := s.store.ListDueReservations(ctx, viewer, from, from.Add(window))
	if err != nil {
		return nil, fail(KindStore, tr, i18n.KeyStoreError, err)
	}
	return due, nil
}

// MarkReminderSent flags reservation id as reminded. Ownership is only
// checked when the reminder-ownership policy is on.
func (s *Reservations) MarkReminderSent(ctx context.Context, viewer string, id int64, tr *i18n.Translator) error {
	if viewer == "" {
		return fail(KindNotAuthenticated, tr, i18n.KeyNotAuthenticated, nil)
	}
	if id <= 0 {
		return &Error{Kind: KindInvalidArgument, Message: InvalidReservationIDMessage}
	}

	if s.opts.Policies.ReminderOwnership {
		r, err := s.store.GetReservationWithBook(ctx, id)
		if err != nil {
			return s.loadFailure(tr, i18n.KeyReservationNotFound, err)
		}
		if r.UserID != viewer {
			return fail(KindNotAuthorized, tr, i18n.KeyNotAuthorized, nil)
		}
	}

	if err := s.store.UpdateReservation(ctx, id, map[string]any{"reminder_sent": true}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(KindNotFound, tr, i18n.KeyReservationNotFound, err)
		}
		return fail(KindUpdateFailed, tr, i18n.KeyReminderFailed, err)
	}
	return nil
}

// ListMyReservations returns every reservation of viewer, newest first.
func (s *Reservations) ListMyReservations(ctx context.Context, viewer string, tr *i18n.Translator) ([]models.Reservation, error) {
	if viewer == "" {
		return nil, fail(KindNotAuthenticated, tr, i18n.KeyNotAuthenticated, nil)
	}
	reservations, err := s.store.ListReservationsByUser(ctx, viewer)
	if err != nil {
		return nil, fail(KindStore, tr, i18n.KeyStoreError, err)
	}
	return reservations, nil
}

// UpdateReservationStatus moves a reservation along the lifecycle on behalf
// of a librarian.
func (s *Reservations) UpdateReservationStatus(ctx context.Context, viewer string, id int64, status models.ReservationStatus, tr *i18n.Translator) (*models.Reservation, error) {
	if _, err := s.requireLibrarian(ctx, viewer, tr); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, &Error{Kind: KindInvalidArgument, Message: InvalidReservationIDMessage}
	}
	if !status.Valid() {
		return nil, fail(KindInvalidArgument, tr, i18n.KeyReservationInvalidStatus, nil)
	}

	r, err := s.store.GetReservationWithBook(ctx, id)
	if err != nil {
		return nil, s.loadFailure(tr, i18n.KeyReservationNotFound, err)
	}
	if err := statemachine.CanTransition(r.Status, status, statemachine.ActorLibrarian); err != nil {
		return nil, fail(KindInvalidTransition, tr, i18n.KeyReservationInvalidStatus, err)
	}

	fields := map[string]any{"status": status}
	if status == models.StatusReturned {
		fields["return_date"] = s.now()
	}
	if err := s.store.UpdateReservation(ctx, id, fields); err != nil {
		return nil, fail(KindUpdateFailed, tr, i18n.KeyStoreError, err)
	}

	if s.opts.Policies.EnforceAvailability && (status == models.StatusReturned || status == models.StatusCancelled) {
		if err := s.store.AdjustAvailableCopies(ctx, r.BookID, 1); err != nil {
			s.log.Error("release copy failed", zap.Int64("book_id", r.BookID), zap.Error(err))
		}
	}

	updated, err := s.store.GetReservationWithBook(ctx, id)
	if err != nil {
		return nil, s.loadFailure(tr, i18n.KeyReservationNotFound, err)
	}
	s.log.Info("reservation status updated",
		zap.Int64("reservation_id", id),
		zap.String("from", string(r.Status)),
		zap.String("to", string(status)),
		zap.String("librarian", viewer),
	)
	return updated, nil
}

func (s *Reservations) requireLibrarian(ctx context.Context, viewer string, tr *i18n.Translator) (*models.User, error) {
	return requireLibrarian(ctx, s.store, viewer, tr)
}

func requireLibrarian(ctx context.Context, st Store, viewer string, tr *i18n.Translator) (*models.User, error) {
	if viewer == "" {
		return nil, fail(KindNotAuthenticated, tr, i18n.KeyNotAuthenticated, nil)
	}
	profile, err := st.GetProfile(ctx, viewer)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fail(KindNotAuthorized, tr, i18n.KeyNotAuthorized, err)
		}
		return nil, fail(KindStore, tr, i18n.KeyStoreError, err)
	}
	if profile.Role != models.RoleLibrarian {
		return nil, fail(KindNotAuthorized, tr, i18n.KeyNotAuthorized, nil)
	}
	return profile, nil
}

// loadFailure maps a failed read to NotFound (with notFoundKey) or StoreError.
func (s *Reservations) loadFailure(tr *i18n.Translator, notFoundKey string, err error) *Error {
	if errors.Is(err, store.ErrNotFound) {
		return fail(KindNotFound, tr, notFoundKey, err)
	}
	return fail(KindStore, tr, i18n.KeyStoreError, err)
}
