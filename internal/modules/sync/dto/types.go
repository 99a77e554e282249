package dto

import "time"

type CollectionOutput struct {
	Name    string
	Pulled  int
	Skipped int
	Held    int
	Error   string
}

type PullOutput struct {
	At          time.Time
	Collections []CollectionOutput
	Flushed     int
}

type StatusOutput struct {
	SignedIn      bool
	UserID        string
	LocalOnly     bool
	Reason        string
	OutboxEnabled bool
	Pending       int
	LastPull      time.Time
}
