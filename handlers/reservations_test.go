package handlers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-api/config"
)

func TestExtendReservation(t *testing.T) {
	ts := newTestServer(t, config.Policies{})
	userID, token := ts.signUp(t, "ada@example.com")
	book := ts.givenBook(t, 1, 1)
	due := time.Date(2030, time.January, 10, 12, 0, 0, 0, time.UTC)
	r := ts.givenReservation(t, userID, book.ID, due)

	rec, body := ts.do(t, request{method: http.MethodPost, path: path("/api/reservations/extend/", r.ID), token: token})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Reservation extended by 7 days", body["message"])
	assert.Contains(t, body, "error")
	assert.Nil(t, body["error"])
	reservation := body["reservation"].(map[string]any)
	assert.Equal(t, true, reservation["extended"])
	newDue, err := time.Parse(time.RFC3339, reservation["due_date"].(string))
	require.NoError(t, err)
	assert.True(t, newDue.Equal(due.Add(7*24*time.Hour)), newDue)
}

func TestExtendReservation_InvalidID(t *testing.T) {
	ts := newTestServer(t, config.Policies{})
	_, token := ts.signUp(t, "ada@example.com")

	for _, id := range []string{"abc", "0", "-1", "1.5"} {
		rec, body := ts.do(t, request{method: http.MethodPost, path: "/api/reservations/extend/" + id, token: token})

		assert.Equal(t, http.StatusBadRequest, rec.Code, id)
		assert.Equal(t, map[string]any{"error": "Invalid reservation ID"}, body, id)
	}
}

func TestExtendReservation_NotFound(t *testing.T) {
	ts := newTestServer(t, config.Policies{})
	_, token := ts.signUp(t, "ada@example.com")

	rec, body := ts.do(t, request{method: http.MethodPost, path: "/api/reservations/extend/4242", token: token})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Reservation not found", body["error"])
}

func TestExtendReservation_SingleUsePolicy(t *testing.T) {
	ts := newTestServer(t, config.Policies{SingleUseExtension: true})
	userID, token := ts.signUp(t, "ada@example.com")
	book := ts.givenBook(t, 1, 1)
	r := ts.givenReservation(t, userID, book.ID, time.Now().UTC().Add(72*time.Hour))

	rec, _ := ts.do(t, request{method: http.MethodPost, path: path("/api/reservations/extend/", r.ID), token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, body := ts.do(t, request{method: http.MethodPost, path: path("/api/reservations/extend/", r.ID), token: token})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "This reservation has already been extended", body["error"])
}

func TestExtendReservation_RequiresSession(t *testing.T) {
	ts := newTestServer(t, config.Policies{})

	rec, _ := ts.do(t, request{method: http.MethodPost, path: "/api/reservations/extend/1"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExtendReservation_InvalidIDCheckedBeforeSession(t *testing.T) {
	ts := newTestServer(t, config.Policies{})

	for _, token := range []string{"", "not-a-session"} {
		rec, body := ts.do(t, request{method: http.MethodPost, path: "/api/reservations/extend/abc", token: token})

		assert.Equal(t, http.StatusBadRequest, rec.Code, token)
		assert.Equal(t, map[string]any{"error": "Invalid reservation ID"}, body, token)
	}
}

func TestReserveBookAndList(t *testing.T) {
	ts := newTestServer(t, config.Policies{EnforceAvailability: true})
	_, token := ts.signUp(t, "ada@example.com")
	book := ts.givenBook(t, 1, 1)

	rec, body := ts.do(t, request{method: http.MethodPost, path: path("/api/books/", book.ID) + "/reserve", token: token, body: map[string]string{"due_date": "2030-02-01"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "active", body["reservation"].(map[string]any)["status"])

	rec, body = ts.do(t, request{method: http.MethodPost, path: path("/api/books/", book.ID) + "/reserve", token: token, body: map[string]string{"due_date": "2030-02-01"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "No copies of this book are available", body["error"])

	rec, body = ts.do(t, request{method: http.MethodGet, path: "/api/reservations", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["count"])

	rec, body = ts.do(t, request{method: http.MethodGet, path: "/api/books?available=true"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, body["count"])
}

func TestNotificationsAndReminder(t *testing.T) {
	ts := newTestServer(t, config.Policies{})
	userID, token := ts.signUp(t, "ada@example.com")
	book := ts.givenBook(t, 2, 2)
	soon := ts.givenReservation(t, userID, book.ID, time.Now().UTC().Add(48*time.Hour))
	ts.givenReservation(t, userID, book.ID, time.Now().UTC().Add(9*24*time.Hour))

	rec, body := ts.do(t, request{method: http.MethodGet, path: "/api/reservations/notifications", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["count"])

	rec, body = ts.do(t, request{method: http.MethodGet, path: "/api/reservations/upcoming", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["count"])

	rec, _ = ts.do(t, request{method: http.MethodPut, path: path("/api/reservations/", soon.ID) + "/reminder", token: token})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = ts.do(t, request{method: http.MethodGet, path: "/api/reservations/notifications", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, body["count"])

	loaded, err := ts.store.GetReservationWithBook(context.Background(), soon.ID)
	require.NoError(t, err)
	assert.True(t, loaded.ReminderSent)
}
