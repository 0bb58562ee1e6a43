// Package common provides shared test infrastructure
package common

import (
	"os"
	"strings"
	"testing"
)

// DockerEnvVar enables tests that start containers.
const DockerEnvVar = "STOCKDASH_TEST_DOCKER"

// RequireDocker skips the test unless STOCKDASH_TEST_DOCKER=true.
func RequireDocker(t *testing.T) {
	t.Helper()
	if v := strings.ToLower(os.Getenv(DockerEnvVar)); v != "true" && v != "1" {
		t.Skipf("set %s=true to run container tests", DockerEnvVar)
	}
}
