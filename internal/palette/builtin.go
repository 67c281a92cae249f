package palette

import (
	"fmt"
	"strings"

	"github.com/preston-bernstein/scorekeeper-service/internal/color"
)

const (
	RevisionV1 = "v1"
	RevisionV2 = "v2"

	// DefaultRevision is used when no revision is configured.
	DefaultRevision = RevisionV2
)

var (
	systemBlue = color.ParseHex("#007aff")
	systemRed  = color.ParseHex("#ff3b30")
	blue       = color.ParseHex("#0072b2")
	pink       = color.ParseHex("#cc79a7")
	green      = color.ParseHex("#009e73")
	yellow     = color.ParseHex("#f0e442")
	orange     = color.ParseHex("#e69f00")
	vermillion = color.ParseHex("#d55e00")
	black      = color.ParseHex("#000000")
)

func entry(key string, home, away color.RGBA) Entry {
	return Entry{Key: key, Pair: Pair{Home: home, Away: away}, Asset: key}
}

func v1() Catalogue {
	return Catalogue{
		Revision: RevisionV1,
		Default:  Pair{Home: systemBlue, Away: systemRed},
		Entries: []Entry{
			entry("blueRed", systemBlue, systemRed),
			entry("bluePink", blue, pink),
			entry("greenYellow", green, yellow),
			entry("blueOrange", blue, orange),
		},
	}
}

func v2() Catalogue {
	c := v1()
	c.Revision = RevisionV2
	c.Default = Pair{Home: green, Away: yellow}
	c.Entries = append(c.Entries, entry("blackOrange", black, vermillion))
	return c
}

// Builtin returns a fresh copy of a shipped catalogue revision.
func Builtin(revision string) (Catalogue, error) {
	switch revision {
	case RevisionV1:
		return v1(), nil
	case RevisionV2, "":
		return v2(), nil
	default:
		return Catalogue{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownRevision, revision, strings.Join(Revisions(), ", "))
	}
}

// Revisions lists the built-in revision names, oldest first.
func Revisions() []string {
	return []string{RevisionV1, RevisionV2}
}
