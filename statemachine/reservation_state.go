package statemachine

import (
	"errors"
	"strings"

	"library-api/models"
)

const (
	ActorCustomer  = "customer"
	ActorLibrarian = "librarian"
	ActorSystem    = "system"
)

// ErrInvalidTransition is wrapped by every error CanTransition returns.
var ErrInvalidTransition = errors.New("invalid transition")

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.ReservationStatus `json:"from"`
	To    models.ReservationStatus `json:"to"`
	Actor string                   `json:"actor"`
}

// validTransitions is the authoritative reservation lifecycle
var validTransitions = []Transition{
	// Reader extends an open loan once
	{From: models.StatusActive, To: models.StatusExtended, Actor: ActorCustomer},
	// Loan runs past its due date
	{From: models.StatusActive, To: models.StatusOverdue, Actor: ActorSystem},
	{From: models.StatusActive, To: models.StatusOverdue, Actor: ActorLibrarian},
	{From: models.StatusExtended, To: models.StatusOverdue, Actor: ActorSystem},
	{From: models.StatusExtended, To: models.StatusOverdue, Actor: ActorLibrarian},
	// Librarian takes the book back
	{From: models.StatusActive, To: models.StatusReturned, Actor: ActorLibrarian},
	{From: models.StatusExtended, To: models.StatusReturned, Actor: ActorLibrarian},
	{From: models.StatusOverdue, To: models.StatusReturned, Actor: ActorLibrarian},
	// Librarian cancels a loan that never went out or was lost
	{From: models.StatusActive, To: models.StatusCancelled, Actor: ActorLibrarian},
	{From: models.StatusExtended, To: models.StatusCancelled, Actor: ActorLibrarian},
	{From: models.StatusOverdue, To: models.StatusCancelled, Actor: ActorLibrarian},
}

type transitionKey struct {
	From  models.ReservationStatus
	To    models.ReservationStatus
	Actor string
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.ReservationStatus) []models.ReservationStatus {
	var nexts []models.ReservationStatus
	seen := map[models.ReservationStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move from one state to another
func CanTransition(from, to models.ReservationStatus, actor string) error {
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return &TransitionError{From: from, To: to, Actor: actor}
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status models.ReservationStatus) bool {
	return len(ValidTransitionsFrom(status)) == 0
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return append([]Transition(nil), validTransitions...)
}

type TransitionError struct {
	From  models.ReservationStatus
	To    models.ReservationStatus
	Actor string
}

func (e *TransitionError) Error() string {
	return "invalid transition: " + string(e.From) + " → " + string(e.To) +
		" is not allowed for actor '" + e.Actor + "'. " +
		"Valid transitions from " + string(e.From) + " are: " + describeValidFrom(e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

func describeValidFrom(status models.ReservationStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
