package config

import (
	"fmt"
	"net/url"
	"os"
)

// DatabaseURL assembles the postgres connection string, either straight
// from DATABASE_URL or from the individual POSTGRES_* variables.
func DatabaseURL() (string, error) {
	if dbURL, ok := os.LookupEnv("DATABASE_URL"); ok {
		return dbURL, nil
	}

	user, err := env("POSTGRES_USER")
	if err != nil {
		return "", err
	}
	password, err := env("POSTGRES_PASSWORD")
	if err != nil {
		return "", err
	}
	host, err := env("POSTGRES_HOST")
	if err != nil {
		return "", err
	}
	port, err := env("POSTGRES_PORT")
	if err != nil {
		return "", err
	}
	dbName, err := env("POSTGRES_DB")
	if err != nil {
		return "", err
	}
	sslMode := os.Getenv("POSTGRES_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		user, url.QueryEscape(password), host, port, dbName, sslMode,
	), nil
}
