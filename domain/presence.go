// Package domain contains core concepts of the relay.
// This file defines presence entities. A connection is an ephemeral
// transport handle; a user identity may hold several of them at once.
package domain

// ConnectionID identifies one live transport connection.
// Created on connect, destroyed on disconnect, never reused.
type ConnectionID string

// PresenceEntry binds a live connection to the identity that joined on it.
// At most one entry exists per ConnectionID.
type PresenceEntry struct {
	Connection ConnectionID
	UserID     string
}
