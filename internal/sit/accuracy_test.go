package sit_test

import (
	"strings"
	"testing"

	"github.com/gzhole/sitbench/internal/sit"
	"github.com/gzhole/sitbench/internal/sit/testdata"
)

// ---------------------------------------------------------------------------
// runPatternCases evaluates each case against the builtin registry.
//
// Classification handling:
//   - TP: the pattern MUST report exactly Want somewhere in Text.
//   - TN: the pattern MUST report nothing.
//   - FP / FN: skipped, they document known pattern limitations.
// ---------------------------------------------------------------------------

func runPatternCases(t *testing.T, cases []testdata.PatternCase) {
	t.Helper()

	reg := sit.Builtin()

	for _, tc := range cases {
		t.Run(tc.ID, func(t *testing.T) {
			switch tc.Classification {
			case "FP":
				t.Skipf("KNOWN FALSE POSITIVE: %s", firstLine(tc.Description))
				return
			case "FN":
				t.Skipf("KNOWN FALSE NEGATIVE: %s", firstLine(tc.Description))
				return
			}

			def, ok := reg.Get(tc.SITID)
			if !ok {
				t.Fatalf("unknown SIT %s", tc.SITID)
			}

			var found []string
			for _, s := range def.Matches(tc.Text) {
				found = append(found, tc.Text[s.Start:s.End])
			}

			switch tc.Classification {
			case "TP":
				for _, f := range found {
					if f == tc.Want {
						return
					}
				}
				t.Errorf("[TP] %s\n  Text:  %q\n  Want:  %q\n  Found: %q\n  Why:   %s",
					tc.ID, tc.Text, tc.Want, found, firstLine(tc.Description))
			case "TN":
				if len(found) > 0 {
					t.Errorf("[TN] %s\n  Text:  %q\n  Found: %q\n  Why:   %s",
						tc.ID, tc.Text, found, firstLine(tc.Description))
				}
			}
		})
	}
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return s
}

func TestAccuracy_NationalIDs(t *testing.T) {
	runPatternCases(t, testdata.NationalIDCases)
}

func TestAccuracy_Financial(t *testing.T) {
	runPatternCases(t, testdata.FinancialCases)
}

func TestAccuracy_Other(t *testing.T) {
	runPatternCases(t, testdata.OtherCases)
}

// The known-limitation cases must stay honest: FP cases still fire and FN
// cases still miss. When a pattern is fixed, promote the case.
func TestAccuracy_KnownLimitationsStillHold(t *testing.T) {
	reg := sit.Builtin()
	for _, tc := range testdata.AllPatternCases() {
		def, ok := reg.Get(tc.SITID)
		if !ok {
			t.Errorf("[%s] unknown SIT %s", tc.ID, tc.SITID)
			continue
		}
		hits := len(def.Matches(tc.Text))
		switch tc.Classification {
		case "FP":
			if hits == 0 {
				t.Errorf("[%s] no longer a false positive; promote to TN", tc.ID)
			}
		case "FN":
			if hits != 0 {
				t.Errorf("[%s] now detected; promote to TP", tc.ID)
			}
		}
	}
}

func TestPatternCaseIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, tc := range testdata.AllPatternCases() {
		if seen[tc.ID] {
			t.Errorf("duplicate case ID: %s", tc.ID)
		}
		seen[tc.ID] = true
	}
}

func TestPatternCaseClassificationsAreValid(t *testing.T) {
	valid := map[string]bool{}
	for _, c := range testdata.AllClassifications {
		valid[c] = true
	}
	for _, tc := range testdata.AllPatternCases() {
		if !valid[tc.Classification] {
			t.Errorf("[%s] invalid classification: %q", tc.ID, tc.Classification)
		}
		if tc.Classification == "TP" && tc.Want == "" {
			t.Errorf("[%s] TP case without Want", tc.ID)
		}
	}
}

// TestPatternAccuracyMetrics logs TP/TN/FP/FN counts for the builtin catalogue.
// Run with: go test -v -run TestPatternAccuracyMetrics
func TestPatternAccuracyMetrics(t *testing.T) {
	counts := map[string]int{}
	bySIT := map[string]map[string]int{}
	for _, tc := range testdata.AllPatternCases() {
		counts[tc.Classification]++
		if bySIT[tc.SITID] == nil {
			bySIT[tc.SITID] = map[string]int{}
		}
		bySIT[tc.SITID][tc.Classification]++
	}

	tp, fp, fn := float64(counts["TP"]), float64(counts["FP"]), float64(counts["FN"])
	t.Logf("=== Builtin Pattern Accuracy ===")
	t.Logf("  TP:%d TN:%d FP:%d FN:%d", counts["TP"], counts["TN"], counts["FP"], counts["FN"])
	if tp+fp > 0 {
		t.Logf("  Precision: %.1f%%", 100*tp/(tp+fp))
	}
	if tp+fn > 0 {
		t.Logf("  Recall:    %.1f%%", 100*tp/(tp+fn))
	}
	for id, c := range bySIT {
		t.Logf("  %-20s TP:%d TN:%d FP:%d FN:%d", id, c["TP"], c["TN"], c["FP"], c["FN"])
	}
}
