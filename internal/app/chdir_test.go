package app

import (
	"os"
	"testing"
)

// testChdir changes the working directory for the duration of the test
// and restores it on cleanup (equivalent to testing.T.Chdir in Go 1.24+).
func testChdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})
}
