package countries

import "testing"

func TestPhoneCode(t *testing.T) {
	if got := PhoneCode("USA"); got != "+1" {
		t.Fatalf("USA: %q", got)
	}
	if got := PhoneCode("DEU"); got != "+49" {
		t.Fatalf("DEU: %q", got)
	}
	if got := PhoneCode("XXX"); got != "" {
		t.Fatalf("unknown code: %q", got)
	}
}

func TestListHasNoDuplicates(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range All {
		if seen[c.Code] {
			t.Fatalf("duplicate code %s", c.Code)
		}
		seen[c.Code] = true
		if c.Name == "" || c.PhoneCode == "" {
			t.Fatalf("incomplete entry %+v", c)
		}
	}
}
