package menu

import "testing"

func TestNormalizeDay(t *testing.T) {
	if d, err := NormalizeDay(" Monday "); err != nil || d != "monday" {
		t.Fatalf("got %q, %v", d, err)
	}
	if _, err := NormalizeDay("funday"); err == nil {
		t.Fatal("invalid day accepted")
	}
}

func TestPqArrayRoundtrip(t *testing.T) {
	cases := [][]string{
		{},
		{"dal", "rice"},
		{`paneer "special"`, `ghee\roast`},
		{"one, with comma"},
	}
	for _, items := range cases {
		got := parsePqArray(pqArray(items))
		if len(got) != len(items) {
			t.Fatalf("%v: got %v", items, got)
		}
		for i := range items {
			if got[i] != items[i] {
				t.Fatalf("%v: got %v", items, got)
			}
		}
	}
}
