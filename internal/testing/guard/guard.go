// Package guard forces test mode before any runtime code runs. Tests
// that exercise startup paths import it for its side effect.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("IMOBIFLOW_TEST_MODE") == "" {
			_ = os.Setenv("IMOBIFLOW_TEST_MODE", "1")
		}
	})
}
