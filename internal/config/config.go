// Package config loads credentials and run settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// AppName is the application name.
	AppName = "taskseed"

	// DefaultEnvFile is the dotenv file read from the working directory.
	DefaultEnvFile = ".env"

	// DefaultAPIURL is the Asana REST API base URL.
	DefaultAPIURL = "https://app.asana.com/api/1.0"

	// AccessTokenVar holds the personal access token.
	AccessTokenVar = "ACCESS_TOKEN"

	// ProjectIDVar holds the destination project gid.
	ProjectIDVar = "PROJECT_ID"
)

// ErrMissingCredentials is returned by Validate when the token or project is unset.
var ErrMissingCredentials = errors.New(AccessTokenVar + " and " + ProjectIDVar + " must be set in the environment or .env file")

// Config holds credentials and settings.
// It is loaded once before any command runs and not modified afterwards.
type Config struct {
	// AccessToken is the bearer token sent with every request.
	AccessToken string

	// ProjectID is the project every created task is added to.
	ProjectID string

	// APIURL is the REST API base URL.
	APIURL string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// Load reads envFile (if it exists) into the process environment and builds a
// Config from it. Variables already set in the environment win over the file.
// If envFile is empty, DefaultEnvFile is used.
func Load(envFile string) (*Config, error) {
	explicit := envFile != ""
	if !explicit {
		envFile = DefaultEnvFile
	}

	if err := godotenv.Load(envFile); err != nil {
		// The default file is optional; an explicitly named one is not.
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	return &Config{
		AccessToken: strings.TrimSpace(os.Getenv(AccessTokenVar)),
		ProjectID:   strings.TrimSpace(os.Getenv(ProjectIDVar)),
		APIURL:      DefaultAPIURL,
	}, nil
}

// Validate reports ErrMissingCredentials if either required value is empty.
func (c *Config) Validate() error {
	if c.AccessToken == "" || c.ProjectID == "" {
		return ErrMissingCredentials
	}
	return nil
}
