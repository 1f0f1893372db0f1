package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"

	"clipset/internal/config"
	"clipset/internal/deps"
)

// CheckDirectoryAccess passes when path is a directory the current user can
// list, read and create files in.
func CheckDirectoryAccess(name, path string) Result {
	fail := func(reason string) Result {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s)", path, reason)}
	}
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fail("does not exist")
	case err != nil:
		return fail("stat: " + err.Error())
	case !info.IsDir():
		return fail("is not a directory")
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return fail("insufficient permissions: " + err.Error())
	}
	return Result{Name: name, Passed: true, Detail: path + " (read/write ok)"}
}

// CheckSystemDeps resolves the binaries the configured pipeline executes.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.Requirements(cfg))
}
