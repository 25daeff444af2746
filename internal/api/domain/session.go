package domain

import (
	"errors"
)

// Work session status values as stored in the sessions table.
const (
	SessionStatusStarted   = "started"
	SessionStatusStopped   = "stopped"
	SessionStatusCancelled = "cancelled"
)

// Scan response actions.
const (
	ActionStarted = "started"
	ActionStopped = "stopped"
)

var (
	// ErrJobCardNotFound is returned when a job card cannot be found in the database
	ErrJobCardNotFound = errors.New("job card not found")

	// ErrNoOpenSession is returned when a stop is requested but no open session exists
	ErrNoOpenSession = errors.New("no open session for triple")
)
