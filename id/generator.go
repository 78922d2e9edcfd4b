// Package id mints node identifiers for graph proposals.
//
// Proposal ids are human-readable: a slug derived from the node title plus
// a short random disambiguator, e.g. "GHOST_AUTH_SERVICE_9f3a". They are
// generated by the calling layer, not the graph store; the store only
// rejects exact collisions.
package id

import (
	"strings"

	"github.com/google/uuid"
)

// ProposalPrefix marks identifiers of drafted shadow nodes.
const ProposalPrefix = "GHOST"

// maxSlugLen bounds the title-derived portion of a proposal id.
const maxSlugLen = 20

// Proposal returns a new proposal id for a shadow node with the given
// title. The slug keeps ids readable in agent context windows; the random
// suffix keeps repeated proposals for the same title distinct.
func Proposal(title string) string {
	return ProposalPrefix + "_" + Slug(title) + "_" + suffix()
}

// Slug normalizes a title into an upper-case identifier fragment:
// non-alphanumeric runs collapse to single underscores and the result is
// truncated to a fixed length. An empty or fully non-alphanumeric title
// yields "NODE".
func Slug(title string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToUpper(title) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		return "NODE"
	}
	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "_")
	}
	return slug
}

func suffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
}
