package fairos

import "os"

// EnvBaseURL is the environment variable NewFromEnv reads the server URL
// from.
const EnvBaseURL = "FAIROS_DFS_API_URL"

// NewFromEnv constructs a Client from the environment, falling back to
// DefaultBaseURL when FAIROS_DFS_API_URL is unset or empty.
func NewFromEnv(opts ...Option) (*Client, error) {
	baseURL := os.Getenv(EnvBaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return New(baseURL, opts...)
}
