package codes

import "github.com/Alijeyrad/drivingschool_backend/config"

type Config struct {
	GiftCardLength int
	// Charset must be upper-case, ParseCode upper-cases user input.
	Charset string
}

func FromCentralConfig(c config.CodesConfig) Config {
	return Config{
		GiftCardLength: c.GiftCardLength,
		Charset:        c.Charset,
	}
}
