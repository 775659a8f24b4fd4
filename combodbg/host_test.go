package combodbg

import "testing"

func TestPadLabelPadsShortStrings(t *testing.T) {
	got := padLabel("KEY_A", 12)
	if len(got) != 12 {
		t.Fatalf("got length %d (%q), want 12", len(got), got)
	}
}

func TestPadLabelLeavesLongStringsAlone(t *testing.T) {
	long := "KEY_SOMETHING_VERY_LONG"
	if got := padLabel(long, 12); got != long {
		t.Fatalf("got %q, want %q unchanged", got, long)
	}
}

func TestUpperUppercasesOnlyAsciiLetters(t *testing.T) {
	cases := map[rune]rune{
		'a': 'A',
		'z': 'Z',
		'A': 'A',
		'1': '1',
	}
	for in, want := range cases {
		if got := upper(in); got != want {
			t.Fatalf("upper(%q) = %q, want %q", in, got, want)
		}
	}
}
