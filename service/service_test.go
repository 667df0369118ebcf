package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"library-api/auth"
	"library-api/config"
	"library-api/i18n"
	"library-api/models"
	"library-api/service"
	"library-api/store"
	"library-api/validation"
)

var now = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

type fixture struct {
	store        *store.Store
	identity     *auth.Provider
	reservations *service.Reservations
	books        *service.Books
	accounts     *service.Accounts
	tr           *i18n.Translator
}

func newFixture(t *testing.T, policies config.Policies) *fixture {
	t.Helper()
	db, err := config.OpenDB(config.StoreConfig{URL: "sqlite://:memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	s, err := store.New(db)
	require.NoError(t, err)
	cat, err := i18n.Load(i18n.DefaultLocale)
	require.NoError(t, err)

	identity := auth.NewProvider(db, []byte("test-secret"), time.Hour,
		auth.WithHasher(auth.BcryptHasher{Cost: bcrypt.MinCost}),
		auth.WithClock(clock),
	)
	return &fixture{
		store:    s,
		identity: identity,
		reservations: service.NewReservations(s, service.Options{
			Policies: policies,
			Clock:    clock,
		}),
		books:    service.NewBooks(s, nil),
		accounts: service.NewAccounts(identity, s, nil),
		tr:       cat.Translator("en"),
	}
}

func (f *fixture) givenBook(t *testing.T, total, available int) *models.Book {
	t.Helper()
	book := &models.Book{Title: "Emma", Author: "Jane Austen", Category: "classics", TotalCopies: total, AvailableCopies: available}
	require.NoError(t, f.store.CreateBook(context.Background(), book))
	return book
}

func (f *fixture) givenUser(t *testing.T, role models.UserRole) *models.User {
	t.Helper()
	id := uuid.NewString()
	user := &models.User{ID: id, Email: id[:8] + "@example.com", Role: role, FirstName: "Ada", LastName: "Lovelace", Language: "en"}
	require.NoError(t, f.store.CreateUser(context.Background(), user))
	return user
}

func (f *fixture) givenReservation(t *testing.T, userID string, bookID int64, due time.Time) *models.Reservation {
	t.Helper()
	r := &models.Reservation{UserID: userID, BookID: bookID, ReservationDate: now.Add(-24 * time.Hour), DueDate: due, Status: models.StatusActive}
	require.NoError(t, f.store.CreateReservation(context.Background(), r))
	return r
}

func Test_ExtendReservation_AddsSevenDays(t *testing.T) {
	f := newFixture(t, config.Policies{})
	user := f.givenUser(t, models.RoleCustomer)
	book := f.givenBook(t, 1, 1)
	due := now.Add(3 * 24 * time.Hour)
	r := f.givenReservation(t, user.ID, book.ID, due)

	got, err := f.reservations.ExtendReservation(context.Background(), r.ID, f.tr)

	require.NoError(t, err)
	assert.True(t, got.DueDate.Equal(due.Add(service.ExtensionPeriod)))
	assert.True(t, got.Extended)
	assert.Equal(t, models.StatusActive, got.Status, "extend only sets the flag")
	require.NotNil(t, got.Book)
	assert.Equal(t, "Emma", got.Book.Title)
}

func Test_ExtendReservation_RepeatsWithoutSingleUsePolicy(t *testing.T) {
	f := newFixture(t, config.Policies{})
	user := f.givenUser(t, models.RoleCustomer)
	book := f.givenBook(t, 1, 1)
	due := now.Add(3 * 24 * time.Hour)
	r := f.givenReservation(t, user.ID, book.ID, due)
	ctx := context.Background()

	_, err := f.reservations.ExtendReservation(ctx, r.ID, f.tr)
	require.NoError(t, err)
	got, err := f.reservations.ExtendReservation(ctx, r.ID, f.tr)

	require.NoError(t, err)
	assert.True(t, got.DueDate.Equal(due.Add(2*service.ExtensionPeriod)))
}

func Test_ExtendReservation_SingleUsePolicyRejectsSecondExtension(t *testing.T) {
	f := newFixture(t, config.Policies{SingleUseExtension: true})
	user := f.givenUser(t, models.RoleCustomer)
	book := f.givenBook(t, 1, 1)
	due := now.Add(3 * 24 * time.Hour)
	r := f.givenReservation(t, user.ID, book.ID, due)
	ctx := context.Background()

	_, err := f.reservations.ExtendReservation(ctx, r.ID, f.tr)
	require.NoError(t, err)
	_, err = f.reservations.ExtendReservation(ctx, r.ID, f.tr)

	assert.ErrorIs(t, err, service.ErrConflict)
	loaded, err := f.store.GetReservationWithBook(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, loaded.DueDate.Equal(due.Add(service.ExtensionPeriod)))
}

func Test_ExtendReservation_SingleUsePolicyChecksStatus(t *testing.T) {
	f := newFixture(t, config.Policies{SingleUseExtension: true})
	user := f.givenUser(t, models.RoleCustomer)
	book := f.givenBook(t, 1, 1)
	r := f.givenReservation(t, user.ID, book.ID, now.Add(24*time.Hour))
	ctx := context.Background()
	require.NoError(t, f.store.UpdateReservation(ctx, r.ID, map[string]any{"status": models.StatusReturned}))

	_, err := f.reservations.ExtendReservation(ctx, r.ID, f.tr)

	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func Test_ExtendReservation_Errors(t *testing.T) {
	f := newFixture(t, config.Policies{})

	_, err := f.reservations.ExtendReservation(context.Background(), 0, f.tr)
	var svcErr *service.Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, service.KindInvalidArgument, svcErr.Kind)
	assert.Equal(t, service.InvalidReservationIDMessage, svcErr.Message)

	_, err = f.reservations.ExtendReservation(context.Background(), 999, f.tr)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func Test_ExtendReservation_InvalidIDSkipsStore(t *testing.T) {
	fake := newFakeStore()
	svc := service.NewReservations(fake, service.Options{Clock: clock})

	for _, raw := range []string{"abc", "0", "-4", ""} {
		_, err := service.ParseReservationID(raw)
		assert.ErrorIs(t, err, service.ErrInvalidArgument, raw)
	}
	for _, id := range []int64{0, -4} {
		_, err := svc.ExtendReservation(context.Background(), id, nil)
		assert.ErrorIs(t, err, service.ErrInvalidArgument)
	}
	assert.Zero(t, fake.reservationCalls)

	_, err := svc.ExtendReservation(context.Background(), 7, nil)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.Equal(t, 1, fake.reservationCalls)
}

func Test_ParseReservationID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{raw: "42", want: 42},
		{raw: " 7 ", want: 7},
		{raw: "0", wantErr: true},
		{raw: "-3", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "1.5", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := service.ParseReservationID(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, service.ErrInvalidArgument)
				assert.Equal(t, "Invalid reservation ID", err.(*service.Error).Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_ReserveBook(t *testing.T) {
	f := newFixture(t, config.Policies{})
	user := f.givenUser(t, models.RoleCustomer)
	book := f.givenBook(t, 1, 0)
	ctx := context.Background()

	r, err := f.reservations.ReserveBook(ctx, user.ID, book.ID, "2025-03-20", f.tr)

	require.NoError(t, err)
	assert.Positive(t, r.ID)
	assert.Equal(t, models.StatusActive, r.Status)
	assert.False(t, r.Extended)
	assert.False(t, r.ReminderSent)
	assert.True(t, r.ReservationDate.Equal(now))
	assert.True(t, r.DueDate.Equal(time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC)))

	loaded, err := f.store.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.AvailableCopies, "copies are untouched without the availability policy")
}

func Test_ReserveBook_Errors(t *testing.T) {
	f := newFixture(t, config.Policies{})
	user := f.givenUser(t, models.RoleCustomer)
	book := f.givenBook(t, 1, 1)
	ctx := context.Background()

	_, err := f.reservations.ReserveBook(ctx, "", book.ID, "2025-03-20", f.tr)
	assert.ErrorIs(t, err, service.ErrNotAuthenticated)

	_, err = f.reservations.ReserveBook(ctx, user.ID, book.ID, "next week", f.tr)
	assert.ErrorIs(t, err, service.ErrInvalidArgument)

	_, err = f.reservations.ReserveBook(ctx, user.ID, 404, "2025-03-20T10:00:00Z", f.tr)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func Test_ReserveBook_AvailabilityPolicy(t *testing.T) {
	f := newFixture(t, config.Policies{EnforceAvailability: true})
	user := f.givenUser(t, models.RoleCustomer)
	book := f.givenBook(t, 1, 1)
	ctx := context.Background()

	_, err := f.reservations.ReserveBook(ctx, user.ID, book.ID, "2025-03-20", f.tr)
	require.NoError(t, err)
	loaded, err := f.store.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.AvailableCopies)

	_, err = f.reservations.ReserveBook(ctx, user.ID, book.ID, "2025-03-20", f.tr)
	assert.ErrorIs(t, err, service.ErrConflict)
	assert.Equal(t, "No copies of this book are available", err.(*service.Error).Message)
}

func Test_GetAllBorrowedBooks_RequiresLibrarian(t *testing.T) {
	customer := &models.User{ID: "cust", Role: models.RoleCustomer}
	fake := newFakeStore(customer)
	svc := service.NewReservations(fake, service.Options{Clock: clock})
	ctx := context.Background()

	rows, err := svc.GetAllBorrowedBooks(ctx, "", nil)
	assert.Nil(t, rows)
	assert.ErrorIs(t, err, service.ErrNotAuthenticated)

	rows, err = svc.GetAllBorrowedBooks(ctx, customer.ID, nil)
	assert.Nil(t, rows)
	assert.ErrorIs(t, err, service.ErrNotAuthorized)

	rows, err = svc.GetAllBorrowedBooks(ctx, "missing-profile", nil)
	assert.Nil(t, rows)
	assert.ErrorIs(t, err, service.ErrNotAuthorized)

	assert.Zero(t, fake.borrowedCalls)
}

func Test_GetAllBorrowedBooks_PartialFailure(t *testing.T) {
	librarian := &models.User{ID: "lib", Role: models.RoleLibrarian}
	fake := newFakeStore(librarian)
	fake.borrowedErr = errors.New("function get_all_borrowed_books does not exist")
	svc := service.NewReservations(fake, service.Options{Clock: clock})

	rows, err := svc.GetAllBorrowedBooks(context.Background(), librarian.ID, nil)

	var partial *service.PartialFailure[[]models.BorrowedBook]
	require.ErrorAs(t, err, &partial)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.NotNil(t, partial.Payload)
	assert.ErrorIs(t, err, fake.borrowedErr)
	assert.Equal(t, 1, fake.borrowedCalls)
}

func Test_GetAllBorrowedBooks_Librarian(t *testing.T) {
	f := newFixture(t, config.Policies{})
	librarian := f.givenUser(t, models.RoleLibrarian)
	customer := f.givenUser(t, models.RoleCustomer)
	book := f.givenBook(t, 2, 2)
	r := f.givenReservation(t, customer.ID, book.ID, now.Add(48*time.Hour))

	rows, err := f.reservations.GetAllBorrowedBooks(context.Background(), librarian.ID, f.tr)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, r.ID, rows[0].ReservationID)
	assert.Equal(t, customer.Email, rows[0].Email)
}

func Test_GetDueDateNotifications(t *testing.T) {
	f := newFixture(t, config.Policies{})
	user := f.givenUser(t, models.RoleCustomer)
	book := f.givenBook(t, 3, 3)
	soon := f.givenReservation(t, user.ID, book.ID, now.Add(4*24*time.Hour))
	later := f.givenReservation(t, user.ID, book.ID, now.Add(10*24*time.Hour))
	f.givenReservation(t, user.ID, book.ID, now.Add(20*24*time.Hour))
	ctx := context.Background()

	due, err := f.reservations.GetDueDateNotifications(ctx, user.ID, f.tr)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, soon.ID, due[0].ID)

	upcoming, err := f.reservations.ListUpcomingDue(ctx, user.ID, f.tr)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, later.ID, upcoming[1].ID)

	_, err = f.reservations.GetDueDateNotifications(ctx, "", f.tr)
	assert.ErrorIs(t, err, service.ErrNotAuthenticated)
}

func Test_GetDueDateNotifications_StoreError(t *testing.T) {
	fake := newFakeStore()
	svc := service.NewReservations(fake, service.Options{Clock: clock})

	_, err := svc.GetDueDateNotifications(context.Background(), "someone", nil)

	assert.ErrorIs(t, err, service.ErrStore)
}

func Test_MarkReminderSent(t *testing.T) {
	f := newFixture(t, config.Policies{})
	owner := f.givenUser(t, models.RoleCustomer)
	stranger := f.givenUser(t, models.RoleCustomer)
	book := f.givenBook(t, 1, 1)
	r := f.givenReservation(t, owner.ID, book.ID, now.Add(24*time.Hour))
	ctx := context.Background()

	require.NoError(t, f.reservations.MarkReminderSent(ctx, stranger.ID, r.ID, f.tr), "ownership is not checked by default")
	loaded, err := f.store.GetReservationWithBook(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, loaded.ReminderSent)

	due, err := f.reservations.GetDueDateNotifications(ctx, owner.ID, f.tr)
	require.NoError(t, err)
	assert.Empty(t, due)

	assert.ErrorIs(t, f.reservations.MarkReminderSent(ctx, owner.ID, 999, f.tr), service.ErrNotFound)
	assert.ErrorIs(t, f.reservations.MarkReminderSent(ctx, owner.ID, -1, f.tr), service.ErrInvalidArgument)
	assert.ErrorIs(t, f.reservations.MarkReminderSent(ctx, "", r.ID, f.tr), service.ErrNotAuthenticated)
}

func Test_MarkReminderSent_OwnershipPolicy(t *testing.T) {
	f := newFixture(t, config.Policies{ReminderOwnership: true})
	owner := f.givenUser(t, models.RoleCustomer)
	stranger := f.givenUser(t, models.RoleCustomer)
	book := f.givenBook(t, 1, 1)
	r := f.givenReservation(t, owner.ID, book.ID, now.Add(24*time.Hour))
	ctx := context.Background()

	assert.ErrorIs(t, f.reservations.MarkReminderSent(ctx, stranger.ID, r.ID, f.tr), service.ErrNotAuthorized)
	require.NoError(t, f.reservations.MarkReminderSent(ctx, owner.ID, r.ID, f.tr))
}

func Test_ListMyReservations(t *testing.T) {
	f := newFixture(t, config.Policies{})
	user := f.givenUser(t, models.RoleCustomer)
	other := f.givenUser(t, models.RoleCustomer)
	book := f.givenBook(t, 2, 2)
	f.givenReservation(t, user.ID, book.ID, now.Add(24*time.Hour))
	f.givenReservation(t, other.ID, book.ID, now.Add(24*time.Hour))

	mine, err := f.reservations.ListMyReservations(context.Background(), user.ID, f.tr)

	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, user.ID, mine[0].UserID)
}

func Test_UpdateReservationStatus(t *testing.T) {
	f := newFixture(t, config.Policies{EnforceAvailability: true})
	librarian := f.givenUser(t, models.RoleLibrarian)
	customer := f.givenUser(t, models.RoleCustomer)
	book := f.givenBook(t, 2, 1)
	r := f.givenReservation(t, customer.ID, book.ID, now.Add(24*time.Hour))
	ctx := context.Background()

	_, err := f.reservations.UpdateReservationStatus(ctx, customer.ID, r.ID, models.StatusReturned, f.tr)
	assert.ErrorIs(t, err, service.ErrNotAuthorized)

	_, err = f.reservations.UpdateReservationStatus(ctx, librarian.ID, r.ID, "lost", f.tr)
	assert.ErrorIs(t, err, service.ErrInvalidArgument)

	got, err := f.reservations.UpdateReservationStatus(ctx, librarian.ID, r.ID, models.StatusReturned, f.tr)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReturned, got.Status)
	require.NotNil(t, got.ReturnDate)
	assert.True(t, got.ReturnDate.Equal(now))

	loaded, err := f.store.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.AvailableCopies)

	_, err = f.reservations.UpdateReservationStatus(ctx, librarian.ID, r.ID, models.StatusActive, f.tr)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func Test_CreateBook(t *testing.T) {
	f := newFixture(t, config.Policies{})
	librarian := f.givenUser(t, models.RoleLibrarian)
	customer := f.givenUser(t, models.RoleCustomer)
	ctx := context.Background()

	_, err := f.books.CreateBook(ctx, customer.ID, service.NewBook{Title: "Dune", Author: "Frank Herbert", TotalCopies: 2}, f.tr)
	assert.ErrorIs(t, err, service.ErrNotAuthorized)

	book, err := f.books.CreateBook(ctx, librarian.ID, service.NewBook{Title: "Dune", Author: "Frank Herbert", TotalCopies: 2}, f.tr)
	require.NoError(t, err)
	assert.Equal(t, 2, book.AvailableCopies)

	tooMany := 9
	book, err = f.books.CreateBook(ctx, librarian.ID, service.NewBook{Title: "Emma", Author: "Jane Austen", TotalCopies: 3, AvailableCopies: &tooMany}, f.tr)
	require.NoError(t, err)
	assert.Equal(t, 3, book.AvailableCopies)

	_, err = f.books.GetBook(ctx, book.ID, f.tr)
	require.NoError(t, err)
	_, err = f.books.GetBook(ctx, 404, f.tr)
	assert.ErrorIs(t, err, service.ErrNotFound)

	listed, err := f.books.ListBooks(ctx, store.BookFilter{Search: "dune"}, f.tr)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func registerInput(email string) validation.RegisterInput {
	return validation.RegisterInput{FirstName: "Ada", LastName: "Lovelace", Email: email, Password: "correct-horse"}
}

func Test_SignUp_SignIn(t *testing.T) {
	f := newFixture(t, config.Policies{})
	ctx := context.Background()

	res, err := f.accounts.SignUp(ctx, registerInput("ada@example.com"), "fr", f.tr)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, res.User.Role)
	assert.Equal(t, "fr", res.User.Language)
	require.NotNil(t, res.Session)
	assert.Equal(t, res.User.ID, res.Session.UserID)

	profile, err := f.accounts.Profile(ctx, res.User.ID, f.tr)
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.FirstName)

	_, err = f.accounts.SignUp(ctx, registerInput("ada@example.com"), "", f.tr)
	assert.ErrorIs(t, err, service.ErrConflict)
	assert.Equal(t, "This email is already registered", err.(*service.Error).Message)

	session, err := f.accounts.SignIn(ctx, validation.SigninInput{Email: "ada@example.com", Password: "correct-horse"}, f.tr)
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)

	_, err = f.accounts.SignIn(ctx, validation.SigninInput{Email: "nobody@example.com", Password: "whatever"}, f.tr)
	assert.ErrorIs(t, err, service.ErrNotAuthenticated)
	assert.Equal(t, "Invalid email or password", err.(*service.Error).Message)

	require.NoError(t, f.accounts.SignOut(ctx, session.AccessToken, f.tr))
	_, err = f.identity.CurrentUser(ctx, session.AccessToken)
	assert.ErrorIs(t, err, auth.ErrNoSession)
}

func Test_SignUp_Validation(t *testing.T) {
	f := newFixture(t, config.Policies{})

	_, err := f.accounts.SignUp(context.Background(), validation.RegisterInput{Email: "nope", Password: "short"}, "", f.tr)

	var svcErr *service.Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, service.KindValidation, svcErr.Kind)
	assert.Equal(t, map[string]string{
		"first_name": "First name is required",
		"last_name":  "Last name is required",
		"email":      "Please enter a valid email address",
		"password":   "Password must be at least 8 characters",
	}, svcErr.Fields)
}

func Test_DeleteUser(t *testing.T) {
	f := newFixture(t, config.Policies{})
	ctx := context.Background()
	res, err := f.accounts.SignUp(ctx, registerInput("ada@example.com"), "", f.tr)
	require.NoError(t, err)

	require.NoError(t, f.accounts.DeleteUser(ctx, res.User.ID, f.tr))

	_, err = f.accounts.Profile(ctx, res.User.ID, f.tr)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = f.accounts.SignIn(ctx, validation.SigninInput{Email: "ada@example.com", Password: "correct-horse"}, f.tr)
	assert.ErrorIs(t, err, service.ErrNotAuthenticated)
	assert.ErrorIs(t, f.accounts.DeleteUser(ctx, res.User.ID, f.tr), service.ErrNotFound)
}
