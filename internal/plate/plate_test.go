package plate

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"korean plate with spaces and dash", "12 - 가 34 56", "12가3456"},
		{"already canonical", "12가3456", "12가3456"},
		{"lowercase latin", "ab 12 cd", "AB12CD"},
		{"tabs and newlines", "12\t가\n3456", "12가3456"},
		{"dashes only", "12-가-3456", "12가3456"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeCollapsesRenderings(t *testing.T) {
	renderings := []string{"12가3456", "12 가 3456", "12-가-3456", " 12 - 가 34 56 "}
	for _, r := range renderings {
		if got := Normalize(r); got != "12가3456" {
			t.Errorf("Normalize(%q) = %q, expected the shared identity", r, got)
		}
	}
}

func TestDisplay(t *testing.T) {
	if got := Display("  12 가 3456  "); got != "12 가 3456" {
		t.Fatalf("Display kept outer whitespace: %q", got)
	}
}
