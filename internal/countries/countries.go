// Package countries carries the static country list handed to clients in the
// bootstrap bundle, including the dialing prefix shown next to the phone
// field.
package countries

// Country pairs an ISO-ish short code with a display name and dialing prefix.
type Country struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	PhoneCode string `json:"phoneCode"`
}

// All is ordered by display name. The list is intentionally static; this is
// presentation data, not an authority the validator consults.
var All = []Country{
	{"AUS", "Australia", "+61"},
	{"AUT", "Austria", "+43"},
	{"BEL", "Belgium", "+32"},
	{"BRA", "Brazil", "+55"},
	{"CAN", "Canada", "+1"},
	{"CHE", "Switzerland", "+41"},
	{"CHN", "China", "+86"},
	{"DEU", "Germany", "+49"},
	{"DNK", "Denmark", "+45"},
	{"EGY", "Egypt", "+20"},
	{"ESP", "Spain", "+34"},
	{"FIN", "Finland", "+358"},
	{"FRA", "France", "+33"},
	{"GBR", "United Kingdom", "+44"},
	{"GRC", "Greece", "+30"},
	{"IND", "India", "+91"},
	{"IRL", "Ireland", "+353"},
	{"ITA", "Italy", "+39"},
	{"JPN", "Japan", "+81"},
	{"KEN", "Kenya", "+254"},
	{"KOR", "South Korea", "+82"},
	{"MEX", "Mexico", "+52"},
	{"NGA", "Nigeria", "+234"},
	{"NLD", "Netherlands", "+31"},
	{"NOR", "Norway", "+47"},
	{"NZL", "New Zealand", "+64"},
	{"POL", "Poland", "+48"},
	{"PRT", "Portugal", "+351"},
	{"SWE", "Sweden", "+46"},
	{"USA", "United States", "+1"},
	{"ZAF", "South Africa", "+27"},
}

// PhoneCode looks up the dialing prefix for a country code; empty when the
// code is unknown.
func PhoneCode(code string) string {
	for _, c := range All {
		if c.Code == code {
			return c.PhoneCode
		}
	}
	return ""
}
