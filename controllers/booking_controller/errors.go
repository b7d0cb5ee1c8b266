package booking_controller

import "errors"

var (
	ErrBookingAlreadyStarted = errors.New("booking has already started and can no longer be changed")
	ErrBookingNotOwnedByUser = errors.New("booking does not belong to this user")
)
