// Package domain contains core concepts of the messaging system.
// This file defines the Participant view served by the external user directory.
// No runtime, network, or UI logic should be added here.
package domain

// Participant is the read-only projection of a marketplace user
// (renter or listing owner) as returned by the user directory.
type Participant struct {
	ID          string
	DisplayName string
	Email       string
	PushToken   string
	Locale      string
}
