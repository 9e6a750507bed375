package config

import (
	"fmt"
	"os"
	"strings"
)

func Development() bool {
	v, ok := os.LookupEnv("DEVELOPMENT")
	return ok && v != "0"
}

func Addr() string {
	if addr, ok := os.LookupEnv("APP_ADDR"); ok {
		return addr
	}
	return ":8080"
}

// env returns a required environment variable, or a secret loaded from
// the file named by NAME_FILE, whichever is set.
func env(name string) (string, error) {
	if v, ok := os.LookupEnv(name); ok {
		return v, nil
	}
	if path, ok := os.LookupEnv(name + "_FILE"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("unable to read %s: %w", name+"_FILE", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return "", fmt.Errorf("no %s or %s env variable set", name, name+"_FILE")
}
