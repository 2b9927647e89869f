// Package match pairs carrier identifiers with PDF files by filename.
//
// An identifier matches a file when it appears in the lowercased name as a
// whole token: bounded on the left by the start of the name, a space, an
// underscore, or a hyphen, and on the right by the end of the name, a space,
// an underscore, a hyphen, or a period. "1001" therefore matches
// "inv_1001_acme.pdf" and "1001.pdf" but not "21001.pdf" or "1001a.pdf".
package match

import (
	"regexp"
	"strings"

	"github.com/tsstech/billingbot/internal/workdrive"
)

// Candidates partitions a folder listing across carrier identifiers.
//
// The result has exactly one entry per identifier, possibly empty. Folders
// and non-PDF files never match. A file is tested against every identifier,
// so one file may appear under several identifiers; within one identifier,
// candidates keep the listing order.
func Candidates(items []workdrive.Item, ids []string) map[string][]workdrive.Item {
	matches := make(map[string][]workdrive.Item, len(ids))
	for _, id := range ids {
		matches[id] = nil
	}

	patterns := make(map[string]*regexp.Regexp, len(ids))
	for _, id := range ids {
		if _, ok := patterns[id]; ok {
			continue
		}
		patterns[id] = tokenPattern(id)
	}

	for _, item := range items {
		if item.IsFolder() {
			continue
		}
		name := strings.ToLower(item.Name)
		if !strings.HasSuffix(name, ".pdf") {
			continue
		}

		for _, id := range ids {
			if patterns[id].MatchString(name) {
				matches[id] = append(matches[id], item)
			}
		}
	}

	return matches
}

// tokenPattern builds the delimiter-boundary pattern for one identifier.
func tokenPattern(id string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(strings.ToLower(id))
	return regexp.MustCompile(`(?:^|[\s_\-])` + quoted + `(?:[\s_\-.]|$)`)
}
