package constants

const (
	AppName = "drivingschool"

	ConfigName   = "config"
	ConfigFormat = "yaml"
	EnvPrefix    = "DRIVINGSCHOOL"

	// NotificationSubjectPrefix is the NATS subject root for appointment events.
	NotificationSubjectPrefix = "drivingschool"
)
