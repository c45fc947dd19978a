package testdata

// PatternCase is a single detection scenario for a builtin SIT pattern.
//
// Naming convention for IDs:
//
//	TP-<SIT>-<NNN>  True Positive: real-looking value correctly detected
//	TN-<SIT>-<NNN>  True Negative: benign text correctly ignored
//	FP-<SIT>-<NNN>  False Positive: benign text the pattern flags (known)
//	FN-<SIT>-<NNN>  False Negative: real value the pattern misses (known)
type PatternCase struct {
	// ID is a unique identifier for this case (e.g., "TP-SSN-001").
	ID string

	// SITID is the registry id whose pattern is exercised.
	SITID string

	// Text is the input scanned by the pattern.
	Text string

	// Want is the exact substring the pattern must report for TP cases.
	// Ignored for other classifications.
	Want string

	// Classification is one of "TP", "TN", "FP", "FN".
	Classification string

	// Description explains why the case exists.
	Description string
}

// AllClassifications is the set of valid Classification values.
var AllClassifications = []string{"TP", "TN", "FP", "FN"}
