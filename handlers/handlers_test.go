package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"library-api/auth"
	"library-api/config"
	"library-api/handlers"
	"library-api/i18n"
	"library-api/models"
	"library-api/routes"
	"library-api/service"
	"library-api/store"
)

const (
	anonKey    = "anon-key"
	serviceKey = "service-key"
)

type testServer struct {
	engine   *gin.Engine
	store    *store.Store
	identity *auth.Provider
	accounts *service.Accounts
}

func newTestServer(t *testing.T, policies config.Policies) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

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
		auth.WithHasher(auth.BcryptHasher{Cost: bcrypt.MinCost}))

	log := zap.NewNop()
	accounts := service.NewAccounts(identity, s, log)
	h := handlers.New(
		accounts,
		service.NewBooks(s, log),
		service.NewReservations(s, service.Options{Policies: policies, Logger: log}),
		log,
	)
	engine := routes.NewEngine(cat, log, h, routes.Deps{
		Sessions:   identity,
		Profiles:   s,
		AnonKey:    anonKey,
		ServiceKey: serviceKey,
	})
	return &testServer{engine: engine, store: s, identity: identity, accounts: accounts}
}

type request struct {
	method  string
	path    string
	body    any
	token   string
	headers map[string]string
}

func (ts *testServer) do(t *testing.T, r request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var body bytes.Buffer
	if r.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(r.body))
	}
	req := httptest.NewRequest(r.method, r.path, &body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", anonKey)
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	}
	return rec, decoded
}

// signUp registers a customer over HTTP and returns its id and token.
func (ts *testServer) signUp(t *testing.T, email string) (string, string) {
	t.Helper()
	rec, body := ts.do(t, request{method: http.MethodPost, path: "/api/auth/signup", body: map[string]string{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      email,
		"password":   "correct-horse",
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	session := body["session"].(map[string]any)
	return session["user_id"].(string), session["access_token"].(string)
}

// givenLibrarian creates a librarian the way the seed command does and
// signs it in.
func (ts *testServer) givenLibrarian(t *testing.T) (string, string) {
	t.Helper()
	ctx := context.Background()
	userID, err := ts.identity.SignUp(ctx, "librarian@example.com", "librarian-pass")
	require.NoError(t, err)
	require.NoError(t, ts.store.CreateUser(ctx, &models.User{
		ID: userID, Email: "librarian@example.com", Role: models.RoleLibrarian,
		FirstName: "Head", LastName: "Librarian", Language: "en",
	}))
	session, err := ts.identity.SignIn(ctx, "librarian@example.com", "librarian-pass")
	require.NoError(t, err)
	return userID, session.AccessToken
}

func (ts *testServer) givenBook(t *testing.T, total, available int) *models.Book {
	t.Helper()
	book := &models.Book{Title: "Emma", Author: "Jane Austen", Category: "classics", TotalCopies: total, AvailableCopies: available}
	require.NoError(t, ts.store.CreateBook(context.Background(), book))
	return book
}

func (ts *testServer) givenReservation(t *testing.T, userID string, bookID int64, due time.Time) *models.Reservation {
	t.Helper()
	r := &models.Reservation{UserID: userID, BookID: bookID, ReservationDate: time.Now().UTC(), DueDate: due, Status: models.StatusActive}
	require.NoError(t, ts.store.CreateReservation(context.Background(), r))
	return r
}

func path(format string, id int64) string {
	return format + strconv.FormatInt(id, 10)
}
