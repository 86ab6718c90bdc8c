package services

// CurrencyOption is one selectable export currency.
type CurrencyOption struct {
	Label  string
	Code   string
	Symbol string
}

// CurrencyOptions lists the currencies a proposal can be priced in. The
// first entry is the reference currency.
var CurrencyOptions = []CurrencyOption{
	{Label: "USD - US Dollar", Code: "USD", Symbol: "$"},
	{Label: "EUR - Euro", Code: "EUR", Symbol: "€"},
	{Label: "GBP - British Pound", Code: "GBP", Symbol: "£"},
	{Label: "INR - Indian Rupee", Code: "INR", Symbol: "₹"},
}

// IsSupportedCurrency reports whether code is a selectable currency.
func IsSupportedCurrency(code string) bool {
	for _, opt := range CurrencyOptions {
		if opt.Code == code {
			return true
		}
	}
	return false
}

// MarginOptions returns the global margin percentage presets.
var MarginOptions = []int{0, 5, 10, 15, 20, 25, 30}

// TaxPolicyOptions lists the supported tax presentation policies.
var TaxPolicyOptions = []TaxPolicy{TaxPolicyFlat, TaxPolicySplit}
