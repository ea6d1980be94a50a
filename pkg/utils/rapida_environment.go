package utils

import "strings"

type RapidaEnvironment string

const (
	PRODUCTION  RapidaEnvironment = "production"
	DEVELOPMENT RapidaEnvironment = "development"
)

func (e RapidaEnvironment) Get() string {
	return string(e)
}

// FromEnvironmentStr falls back to DEVELOPMENT for anything unrecognised.
func FromEnvironmentStr(env string) RapidaEnvironment {
	switch strings.ToLower(env) {
	case string(PRODUCTION):
		return PRODUCTION
	default:
		return DEVELOPMENT
	}
}
