package insights

import "testing"

func TestMerchantKey(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases and strips punctuation", "NETFLIX.COM*123", "netflixcom123"},
		{"collapses whitespace", "  Spotify   USA  ", "spotify usa"},
		{"truncates to three tokens", "city of springfield water utility", "city of springfield"},
		{"empty input", "", ""},
		{"whitespace only", "   ", ""},
		{"punctuation only", "***---", ""},
		{"mixed", "TRADER JOE'S #553", "trader joes 553"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MerchantKey(tc.in); got != tc.want {
				t.Errorf("MerchantKey(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestMerchantKeyDeterministic(t *testing.T) {
	in := "ACME Power & Light Co"
	first := MerchantKey(in)
	for i := 0; i < 5; i++ {
		if got := MerchantKey(in); got != first {
			t.Fatalf("MerchantKey not deterministic: %q vs %q", got, first)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("netflix.com subscription"); got != "Netflixcom Subscription" {
		t.Errorf("DisplayName = %q", got)
	}
	if got := DisplayName("  "); got != "" {
		t.Errorf("DisplayName of blank input = %q, want empty", got)
	}
}
