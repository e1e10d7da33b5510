package catalog

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Travel Bags", "travel-bags"},
		{"  Leather & Canvas  ", "leather-canvas"},
		{"Already-Slugged", "already-slugged"},
		{"UPPER", "upper"},
		{"a  lot   of   spaces", "a-lot-of-spaces"},
		{"100% Cotton!", "100-cotton"},
		{"---", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Fatalf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
