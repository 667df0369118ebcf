package i18n

// Message keys shared by the validation layer, the workflow and the handlers.
const (
	KeyEmailRequired     = "validation.email_required"
	KeyEmailInvalid      = "validation.email_invalid"
	KeyPasswordMin       = "validation.password_min"
	KeyPasswordMax       = "validation.password_max"
	KeyFirstNameRequired = "validation.first_name_required"
	KeyFirstNameMax      = "validation.first_name_max"
	KeyLastNameRequired  = "validation.last_name_required"
	KeyLastNameMax       = "validation.last_name_max"
	KeyInvalidField      = "validation.invalid_field"

	KeySignupSuccess      = "auth.signup_success"
	KeySigninSuccess      = "auth.signin_success"
	KeySignoutSuccess     = "auth.signout_success"
	KeyEmailTaken         = "auth.email_taken"
	KeyInvalidCredentials = "auth.invalid_credentials"
	KeyNotAuthenticated   = "auth.not_authenticated"
	KeyNotAuthorized      = "auth.not_authorized"
	KeyUserDeleted        = "auth.user_deleted"
	KeyUserNotFound       = "auth.user_not_found"

	KeyBookNotFound    = "book.not_found"
	KeyBookUnavailable = "book.unavailable"
	KeyBookCreated     = "book.created"

	KeyReservationNotFound       = "reservation.not_found"
	KeyReservationCreated        = "reservation.created"
	KeyReservationCreateFailed   = "reservation.create_failed"
	KeyReservationExtended       = "reservation.extended"
	KeyReservationExtendFailed   = "reservation.extend_failed"
	KeyReservationAlreadyExtend  = "reservation.already_extended"
	KeyReservationInvalidDueDate = "reservation.invalid_due_date"
	KeyReservationStatusUpdated  = "reservation.status_updated"
	KeyReservationInvalidStatus  = "reservation.invalid_transition"
	KeyReminderMarked            = "reservation.reminder_marked"
	KeyReminderFailed            = "reservation.reminder_failed"

	KeyBorrowedFetchFailed = "borrowed.fetch_failed"
	KeyStoreError          = "store.error"
)
