package services

// ScopeOfWork is the boilerplate rendered on the Scope of Work sheet.
var ScopeOfWork = []string{
	"The scope of work includes the supply, installation, testing, and commissioning of the Audio-Visual equipment as specified in this Bill of Quantities. It covers all necessary cabling, connectors, and mounting hardware for a fully functional system.",
	"Any work not explicitly mentioned, such as civil, electrical, or network infrastructure modifications, is excluded from this scope.",
}

// TermsAndConditions is the boilerplate rendered on the Terms & Conditions
// sheet.
var TermsAndConditions = []string{
	"1. Prices are quoted in USD and are exclusive of any applicable taxes.",
	"2. Payment Terms: 50% advance, 40% on delivery, 10% on completion.",
	"3. Warranty: One year comprehensive on-site warranty for all supplied equipment from the date of handover.",
	"4. Validity: This quotation is valid for 30 days.",
}
