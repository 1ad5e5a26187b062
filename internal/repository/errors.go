package repository

import "errors"

var (
	ErrFacilityNotFound = errors.New("facility not found")
	ErrActiveWaiting    = errors.New("session already has an active waiting ticket")
	ErrNoActiveWaiting  = errors.New("session has no active waiting ticket")
	ErrOrderNotFound    = errors.New("order not found")
)
