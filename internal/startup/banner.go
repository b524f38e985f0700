package startup

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"clipfilter/internal/logging"
)

const rule = "------------------------------------------------------------"

// section starts a titled block of the startup log.
func section(title string, args ...any) {
	logging.Info("")
	logging.Info(rule)
	logging.Info(title, args...)
	logging.Info(rule)
}

func printBanner() {
	fmt.Println(`
` + rule + `
       _ _       __ _ _ _
   ___| (_)_ __ / _(_) | |_ ___ _ __
  / __| | | '_ \ |_| | | __/ _ \ '__|
 | (__| | | |_) |  _| | | ||  __/ |
  \___|_|_| .__/|_| |_|_|\__\___|_|
          |_|
` + rule)

	info := GetBuildInfo()
	logging.Info("  Version:    %s", info.Version)
	logging.Info("  Commit:     %s", info.Commit)
	logging.Info("  Build Time: %s", info.BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
}

func logSystemInfo() {
	section("SYSTEM INFORMATION")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d (GOMAXPROCS %d)", runtime.NumCPU(), runtime.GOMAXPROCS(0))

	// Clips and results are held in memory, so the soft limit matters.
	if limit := debug.SetMemoryLimit(-1); limit != math.MaxInt64 {
		logging.Info("  Memory limit:    %d MiB", limit>>20)
	} else {
		logging.Info("  Memory limit:    none (set MEMORY_LIMIT or MEMORY_RATIO)")
	}

	if hostname, err := os.Hostname(); err == nil {
		logging.Debug("  Hostname:        %s", hostname)
	}
}

// ensureDirectory creates path if needed and fails if it exists as anything
// other than a directory.
func ensureDirectory(path, name string) error {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create %s directory: %w", name, err)
		}
		logging.Debug("  Created %s directory: %s", name, path)
		return nil
	case err != nil:
		return fmt.Errorf("failed to stat %s directory: %w", name, err)
	case !info.IsDir():
		return fmt.Errorf("%s path %s exists but is not a directory", name, path)
	}
	return nil
}

// testWriteAccess creates and removes a scratch file in dir.
func testWriteAccess(dir string) error {
	f, err := os.CreateTemp(dir, ".write-test-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	if err := os.Remove(name); err != nil {
		logging.Warn("failed to remove write test file %s: %v", name, err)
	}
	return nil
}
