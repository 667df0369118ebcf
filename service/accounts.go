package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"library-api/auth"
	"library-api/i18n"
	"library-api/models"
	"library-api/store"
	"library-api/validation"
)

// Accounts ties the identity provider to the mirrored profile rows.
type Accounts struct {
	identity Identity
	store    Store
	log      *zap.Logger
}

func NewAccounts(identity Identity, s Store, log *zap.Logger) *Accounts {
	if log == nil {
		log = zap.NewNop()
	}
	return &Accounts{identity: identity, store: s, log: log.Named("accounts")}
}

// SignUpResult is returned by a successful signup.
type SignUpResult struct {
	User    *models.User  `json:"user"`
	Session *auth.Session `json:"session"`
}

// SignUp validates in, creates the identity and its customer profile in
// language, and signs the new user in.
func (a *Accounts) SignUp(ctx context.Context, in validation.RegisterInput, language string, tr *i18n.Translator) (*SignUpResult, error) {
	in, err := validation.BuildRegisterSchema(tr).Parse(in)
	if err != nil {
		return nil, validationFailure(tr, err)
	}

	userID, err := a.identity.SignUp(ctx, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			return nil, fail(KindConflict, tr, i18n.KeyEmailTaken, err)
		}
		return nil, fail(KindStore, tr, i18n.KeyStoreError, err)
	}

	if language == "" {
		language = tr.Locale()
	}
	user := &models.User{
		ID:        userID,
		Email:     in.Email,
		Role:      models.RoleCustomer,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Language:  language,
	}
	if err := a.store.CreateUser(ctx, user); err != nil {
		a.log.Error("mirror profile failed, removing identity", zap.String("user_id", userID), zap.Error(err))
		if delErr := a.identity.DeleteUser(ctx, userID); delErr != nil {
			a.log.Error("remove identity failed", zap.String("user_id", userID), zap.Error(delErr))
		}
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fail(KindConflict, tr, i18n.KeyEmailTaken, err)
		}
		return nil, fail(KindStore, tr, i18n.KeyStoreError, err)
	}

	session, err := a.identity.SignIn(ctx, in.Email, in.Password)
	if err != nil {
		return nil, fail(KindStore, tr, i18n.KeyStoreError, err)
	}
	a.log.Info("user signed up", zap.String("user_id", userID))
	return &SignUpResult{User: user, Session: session}, nil
}

func (a *Accounts) SignIn(ctx context.Context, in validation.SigninInput, tr *i18n.Translator) (*auth.Session, error) {
	in, err := validation.BuildSigninSchema(tr).Parse(in)
	if err != nil {
		return nil, validationFailure(tr, err)
	}
	session, err := a.identity.SignIn(ctx, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, fail(KindNotAuthenticated, tr, i18n.KeyInvalidCredentials, err)
		}
		return nil, fail(KindStore, tr, i18n.KeyStoreError, err)
	}
	return session, nil
}

func (a *Accounts) SignOut(ctx context.Context, token string, tr *i18n.Translator) error {
	if err := a.identity.SignOut(ctx, token); err != nil {
		if errors.Is(err, auth.ErrNoSession) {
			return fail(KindNotAuthenticated, tr, i18n.KeyNotAuthenticated, err)
		}
		return fail(KindStore, tr, i18n.KeyStoreError, err)
	}
	return nil
}

func (a *Accounts) Profile(ctx context.Context, viewer string, tr *i18n.Translator) (*models.User, error) {
	if viewer == "" {
		return nil, fail(KindNotAuthenticated, tr, i18n.KeyNotAuthenticated, nil)
	}
	user, err := a.store.GetProfile(ctx, viewer)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fail(KindNotFound, tr, i18n.KeyUserNotFound, err)
		}
		return nil, fail(KindStore, tr, i18n.KeyStoreError, err)
	}
	return user, nil
}

// DeleteUser removes both the identity and the profile of userID. The caller
// is expected to have checked the service key.
func (a *Accounts) DeleteUser(ctx context.Context, userID string, tr *i18n.Translator) error {
	identityErr := a.identity.DeleteUser(ctx, userID)
	if identityErr != nil && !errors.Is(identityErr, auth.ErrUserNotFound) {
		return fail(KindStore, tr, i18n.KeyStoreError, identityErr)
	}
	profileErr := a.store.DeleteUser(ctx, userID)
	if profileErr != nil && !errors.Is(profileErr, store.ErrNotFound) {
		return fail(KindStore, tr, i18n.KeyStoreError, profileErr)
	}
	if identityErr != nil && profileErr != nil {
		return fail(KindNotFound, tr, i18n.KeyUserNotFound, identityErr)
	}
	a.log.Info("user deleted", zap.String("user_id", userID))
	return nil
}

func validationFailure(tr *i18n.Translator, err error) *Error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return &Error{
			Kind:    KindValidation,
			Key:     i18n.KeyInvalidField,
			Message: tr.T(i18n.KeyInvalidField),
			Fields:  verr.Fields,
			Err:     err,
		}
	}
	return fail(KindInvalidArgument, tr, i18n.KeyInvalidField, err)
}
