package credentials

import (
	"os"
	"sync"
)

// DefaultEnvVar is where deployments place the service-account blob.
const DefaultEnvVar = "SERVICE_ACCOUNT_JSON"

// Loader decodes the credential exactly once per process and remembers the
// outcome, failure included: a doomed parse must not be re-attempted on
// every request. It is an explicit struct rather than package-level state so
// tests can construct isolated loaders.
type Loader struct {
	envVar string

	once sync.Once
	cred *Credential
	err  error
}

// NewLoader returns a Loader reading from envVar, or DefaultEnvVar if empty.
func NewLoader(envVar string) *Loader {
	if envVar == "" {
		envVar = DefaultEnvVar
	}
	return &Loader{envVar: envVar}
}

// Load returns the decoded credential. The first call decodes; every later
// call returns the cached result, including a cached error.
func (l *Loader) Load() (*Credential, error) {
	l.once.Do(func() {
		l.cred, l.err = Decode(os.Getenv(l.envVar))
	})
	return l.cred, l.err
}
