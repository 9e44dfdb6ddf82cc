package notification

import "errors"

var (
	ErrUnknownEvent        = errors.New("unknown notification event")
	ErrAppointmentNotFound = errors.New("appointment for notification not found")
)
