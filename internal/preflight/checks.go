package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"performersync/internal/catalog"
	"performersync/internal/services"
	"performersync/internal/stashbox"
)

const (
	checkTimeout = 30 * time.Second

	// searchTerm is searched on each registry; any response, including an
	// empty one, proves the endpoint and key work.
	searchTerm = "performersync-preflight"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
// A missing directory passes when its parent is writable, since runs create it.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCatalog verifies the catalog answers and returns its configured
// stash-boxes.
func CheckCatalog(ctx context.Context, store catalog.Store) (Result, []stashbox.Box) {
	const name = "Catalog"

	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	boxes, err := store.StashBoxes(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err)}, nil
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable, %d stash-box(es) configured", len(boxes))}, boxes
}

// CheckRegistries reports how the configured boxes were classified.
func CheckRegistries(native, canonical *stashbox.Box) []Result {
	results := make([]Result, 0, 2)
	if native == nil {
		results = append(results, Result{Name: "Native registry", Detail: "no configured stash-box matches native_match"})
	} else {
		results = append(results, Result{Name: "Native registry", Passed: true, Detail: native.Label()})
	}
	if canonical == nil {
		results = append(results, Result{Name: "Canonical registry", Passed: true, Detail: "not configured (native aliases only)"})
	} else {
		results = append(results, Result{Name: "Canonical registry", Passed: true, Detail: canonical.Label()})
	}
	return results
}

// CheckRegistry issues a single search against reg.
func CheckRegistry(ctx context.Context, name string, reg stashbox.Registry) Result {
	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if _, err := reg.SearchPerformers(checkCtx, searchTerm); err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: reg.Endpoint()}
}

func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (endpoint unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (endpoint unreachable)"
	}
	if errors.Is(err, services.ErrSemanticRejection) {
		return fmt.Sprintf("request rejected (check api key): %v", err)
	}
	return err.Error()
}
