// Package artifacts names, captures and uploads scenario screenshots.
//
// A scenario writes <dir>/<artifact>.png when it passes and
// <dir>/<artifact>-failure.png when it fails. Uploads copy every PNG under the
// results directory to <bucket>/<prefix>/<run-id>/.
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/playwright-community/playwright-go"
)

const failureSuffix = "-failure"

// Path returns the screenshot path for artifact inside dir.
func Path(dir, artifact string, failure bool) string {
	name := artifact
	if failure {
		name += failureSuffix
	}
	return filepath.Join(dir, name+".png")
}

// Slug lower-cases name and replaces each run of whitespace with a dash.
func Slug(name string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(name), unicode.IsSpace), "-")
}

// Capture writes a full-page PNG of page to path, creating its directory.
func Capture(page playwright.Page, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create screenshot dir: %w", err)
	}
	if _, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		return fmt.Errorf("capture screenshot %s: %w", path, err)
	}
	return nil
}
