package config

import "os"

func IsDebug() bool {
	return os.Getenv("CUREBIRD_DEBUG") == "1"
}
