package credentials

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/bitrise-io/go-utils/retry"
	"github.com/bitrise-io/go-utils/v2/log"
)

const locatorRetryAttempts = 3
const locatorRetryWait = 2 * time.Second

// Locator discovers candidate credential files on disk by glob pattern. It
// does not itself decide which file is "the" credential; callers narrow
// further (first match, most-recently-modified, explicit name).
type Locator struct {
	Dir    string
	Logger log.Logger
}

// NewLocator returns a Locator searching under dir.
func NewLocator(dir string, logger log.Logger) *Locator {
	if logger == nil {
		logger = log.NewLogger()
	}
	return &Locator{Dir: dir, Logger: logger}
}

// Find returns the sorted list of files under the locator's directory
// matching any of the given doublestar glob patterns (e.g. "*.json",
// "**/*.p12"). A glob that fails (e.g. on a transiently unreadable network
// filesystem) is retried a bounded number of times before being reported
// as an error; the matched files themselves are not opened.
func (l *Locator) Find(patterns ...string) ([]string, error) {
	fsys := os.DirFS(l.Dir)

	seen := map[string]struct{}{}
	var matches []string
	for _, pattern := range patterns {
		var found []string
		err := retry.Times(locatorRetryAttempts).Wait(locatorRetryWait).TryWithAbort(func(attempt uint) (error, bool) {
			m, err := doublestar.Glob(fsys, pattern)
			if err != nil {
				l.Logger.Warnf("glob %q failed (attempt %d): %v", pattern, attempt+1, err)
				return fmt.Errorf("glob pattern %q: %w", pattern, err), false
			}
			found = m
			return nil, true
		})
		if err != nil {
			return nil, err
		}
		for _, m := range found {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			matches = append(matches, m)
		}
	}

	sort.Strings(matches)
	return matches, nil
}
