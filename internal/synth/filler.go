package synth

import (
	"math/rand/v2"
	"strings"
)

// Filler vocabulary. Nothing here may contain a digit or a SIT-like token:
// filler must stay a clean background for false-positive measurement.
var (
	fillerSubjects = []string{
		"the committee", "our team", "the vendor", "the auditor", "finance",
		"the project lead", "operations", "the regional office", "support",
		"the review board", "legal", "the onboarding group",
	}
	fillerVerbs = []string{
		"reviewed", "approved", "discussed", "updated", "flagged", "archived",
		"summarized", "escalated", "scheduled", "confirmed", "postponed",
	}
	fillerObjects = []string{
		"the quarterly plan", "the onboarding checklist", "the travel policy",
		"the migration timeline", "the budget proposal", "the meeting notes",
		"the retention schedule", "the customer feedback", "the draft contract",
		"the training material", "the incident summary", "the supplier list",
	}
	fillerTails = []string{
		"before the deadline", "after a short delay", "with minor changes",
		"as agreed last week", "pending final review", "without objections",
		"for the next cycle", "in the shared folder", "ahead of the audit",
	}
	firstNames = []string{
		"alice", "bruno", "carla", "daniel", "elena", "felix", "grace",
		"hugo", "irene", "jonas", "karin", "lucas", "maria", "nadia",
		"oscar", "paula", "rafael", "sofia", "tomas", "vera",
	}
	lastNames = []string{
		"almeida", "baker", "costa", "dubois", "evans", "fischer", "garcia",
		"hughes", "ivanova", "jensen", "keller", "lopez", "moreau", "novak",
		"oliveira", "parker", "quinn", "rossi", "silva", "turner",
	}
	domains = []string{
		"example.com", "example.org", "contoso.example", "northwind.example",
		"fabrikam.example",
	}
	leadIns = []string{
		"For reference,", "As requested,", "Please note that", "For the record,",
		"Per our records,", "To confirm,",
	}
)

func choose(r *rand.Rand, list []string) string { return list[r.IntN(len(list))] }

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// sentence returns one filler sentence ending in a period.
func sentence(r *rand.Rand) string {
	s := choose(r, fillerSubjects) + " " + choose(r, fillerVerbs) + " " + choose(r, fillerObjects)
	if r.IntN(2) == 0 {
		s += " " + choose(r, fillerTails)
	}
	return capitalize(s) + "."
}

// paragraph joins n filler sentences.
func paragraph(r *rand.Rand, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = sentence(r)
	}
	return strings.Join(parts, " ")
}

// subject returns a short subject line without a trailing period.
func subject(r *rand.Rand) string {
	return capitalize(choose(r, fillerVerbs) + " " + choose(r, fillerObjects))
}

func personName(r *rand.Rand) string {
	return capitalize(choose(r, firstNames)) + " " + capitalize(choose(r, lastNames))
}

func emailAddress(r *rand.Rand) string {
	return choose(r, firstNames) + "." + choose(r, lastNames) + "@" + choose(r, domains)
}
