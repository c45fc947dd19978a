package testdata

// ---------------------------------------------------------------------------
// National identifiers
// ---------------------------------------------------------------------------

var NationalIDCases = []PatternCase{
	{
		ID: "TP-SSN-001", SITID: "SIT_SSN", Classification: "TP",
		Text: "Employee SSN: 123-45-6789 on file.", Want: "123-45-6789",
		Description: "Canonical dashed SSN inside prose.",
	},
	{
		ID: "TN-SSN-001", SITID: "SIT_SSN", Classification: "TN",
		Text:        "Order 1234-56-7890 shipped.",
		Description: "Four leading digits break the AAA group at a word boundary.",
	},
	{
		ID: "FP-SSN-001", SITID: "SIT_SSN", Classification: "FP",
		Text:        "Call extension 555-12-3456 for support.",
		Description: "Phone-like fragments share the SSN layout; the regex cannot tell them apart.",
	},
	{
		ID: "FN-SSN-001", SITID: "SIT_SSN", Classification: "FN",
		Text:        "SSN 123 45 6789 was read aloud.",
		Description: "Space-separated SSNs are not covered by the dashed pattern.",
	},
	{
		ID: "TP-NINO-001", SITID: "SIT_UK_NINO", Classification: "TP",
		Text: "NI number AB123456C recorded.", Want: "AB123456C",
		Description: "Valid prefix letters, six digits, suffix C.",
	},
	{
		ID: "TN-NINO-001", SITID: "SIT_UK_NINO", Classification: "TN",
		Text:        "Reference DQ123456A rejected.",
		Description: "D and Q are never issued as NINO prefix letters.",
	},
	{
		ID: "TP-CPF-001", SITID: "SIT_BR_CPF", Classification: "TP",
		Text: "CPF 529.982.247-25 do cliente.", Want: "529.982.247-25",
		Description: "Formatted CPF with check digits.",
	},
	{
		ID: "FN-CPF-001", SITID: "SIT_BR_CPF", Classification: "FN",
		Text:        "CPF 52998224725 sem pontos.",
		Description: "Unformatted CPFs are out of the pattern's reach.",
	},
	{
		ID: "TP-SIN-001", SITID: "SIT_CAN_SIN", Classification: "TP",
		Text: "SIN 046-454-286 confirmed.", Want: "046-454-286",
		Description: "Three dash-separated groups of three.",
	},
}

// ---------------------------------------------------------------------------
// Financial identifiers
// ---------------------------------------------------------------------------

var FinancialCases = []PatternCase{
	{
		ID: "TP-CCN-001", SITID: "SIT_CCN", Classification: "TP",
		Text: "Card 4539 1488 0343 6467 charged.", Want: "4539 1488 0343 6467",
		Description: "Space-grouped Visa number.",
	},
	{
		ID: "TP-CCN-002", SITID: "SIT_CCN", Classification: "TP",
		Text: "card=5425233430109903;", Want: "5425233430109903",
		Description: "Compact MasterCard number.",
	},
	{
		ID: "FP-CCN-001", SITID: "SIT_CCN", Classification: "FP",
		Text:        "Tracking 1234 5678 9012 3456 issued.",
		Description: "Any 16 grouped digits match; Luhn is not checked by the regex.",
	},
	{
		ID: "TP-IBAN-001", SITID: "SIT_IBAN", Classification: "TP",
		Text: "Pay to GB82WEST12345698765432 today.", Want: "GB82WEST12345698765432",
		Description: "Reference UK IBAN.",
	},
	{
		ID: "FN-IBAN-001", SITID: "SIT_IBAN", Classification: "FN",
		Text:        "IBAN GB82 WEST 1234 5698 7654 32 printed.",
		Description: "Print-format IBANs with spaces are not matched.",
	},
	{
		ID: "TP-ABA-001", SITID: "SIT_ABA", Classification: "TP",
		Text: "Routing 011000015 for wires.", Want: "011000015",
		Description: "Nine-digit routing number.",
	},
	{
		ID: "TN-ABA-001", SITID: "SIT_ABA", Classification: "TN",
		Text:        "Invoice 0110000152 paid.",
		Description: "Ten digits exceed the routing number width.",
	},
}

// ---------------------------------------------------------------------------
// Network, credential and medical identifiers
// ---------------------------------------------------------------------------

var OtherCases = []PatternCase{
	{
		ID: "TP-IP-001", SITID: "SIT_IP", Classification: "TP",
		Text: "Login from 192.168.10.254 blocked.", Want: "192.168.10.254",
		Description: "Private range IPv4 address.",
	},
	{
		ID: "TN-IP-001", SITID: "SIT_IP", Classification: "TN",
		Text:        "Version 1.2.3 released.",
		Description: "Three-part version strings are not addresses.",
	},
	{
		ID: "FP-IP-001", SITID: "SIT_IP", Classification: "FP",
		Text:        "Upgrade to release 10.4.2.1 tonight.",
		Description: "Four-part version numbers look exactly like IPv4.",
	},
	{
		ID: "TP-SAS-001", SITID: "SIT_AZURE_SAS", Classification: "TP",
		Text: "url?sv=2020&sig=Ab3dEf6hIj9kLm2nOp5qRs8tUv1wXy4zAb7cDe0fGh3Ij6k&se=1",
		Want: "sig=Ab3dEf6hIj9kLm2nOp5qRs8tUv1wXy4zAb7cDe0fGh3Ij6k",
		Description: "Signature parameter inside a SAS URL.",
	},
	{
		ID: "TN-SAS-001", SITID: "SIT_AZURE_SAS", Classification: "TN",
		Text:        "sig=XXXXX placeholder",
		Description: "Short redacted signatures are ignored.",
	},
	{
		ID: "TP-ICD10-001", SITID: "SIT_ICD10", Classification: "TP",
		Text: "Diagnosis E11.9 noted.", Want: "E11.9",
		Description: "Type 2 diabetes code.",
	},
	{
		ID: "TP-DEA-001", SITID: "SIT_DEA", Classification: "TP",
		Text: "Prescriber AB1234563 signed.", Want: "AB1234563",
		Description: "Two letters then seven digits.",
	},
	{
		ID: "TP-DL-001", SITID: "SIT_DRIVER_US", Classification: "TP",
		Text: "License A123456B expires.", Want: "A123456B",
		Description: "Letter-six digits-letter license layout.",
	},
	{
		ID: "TP-PASS-001", SITID: "SIT_PASSPORT_US_UK", Classification: "TP",
		Text: "Passport C0300412 scanned.", Want: "C0300412",
		Description: "Letter followed by seven digits.",
	},
}

// AllPatternCases returns every case.
func AllPatternCases() []PatternCase {
	var all []PatternCase
	all = append(all, NationalIDCases...)
	all = append(all, FinancialCases...)
	all = append(all, OtherCases...)
	return all
}
