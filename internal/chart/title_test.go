package chart

import "testing"

func TestTitle(t *testing.T) {
	cases := []struct {
		program, period, want string
	}{
		{"Pelayanan PTM", "2025", "Target Pelayanan PTM Periode 2025"},
		{" Pelayanan PTM ", "", "Target Pelayanan PTM"},
		{"", "Triwulan I", GenericTitle + " Periode Triwulan I"},
		{"", "  ", GenericTitle},
	}
	for _, c := range cases {
		if got := Title(c.program, c.period); got != c.want {
			t.Errorf("Title(%q, %q) = %q, want %q", c.program, c.period, got, c.want)
		}
	}
}
