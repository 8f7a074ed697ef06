package match

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Naruto Shippuden", "naruto shippuden"},
		{"tv marker", "One Piece (TV)", "one piece"},
		{"season word", "Attack on Titan Season 1", "attack on titan"},
		{"ordinal season", "My Hero Academia 2nd Season", "my hero academia"},
		{"spelled season", "Bungou Stray Dogs Fourth Season", "bungou stray dogs"},
		{"part marker", "Shingeki no Kyojin Part 2", "shingeki no kyojin"},
		{"movie suffix leaves punctuation", "Demon Slayer: The Movie", "demon slayer:"},
		{"animation suffix", "Golden Kamuy The Animation", "golden kamuy"},
		{"trailing year", "Dororo (2019)", "dororo"},
		{"ova marker", "Hellsing (OVA)", "hellsing"},
		{"whitespace", "  Bleach  ", "bleach"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"One Piece (TV)",
		"Attack on Titan Season 1",
		"Demon Slayer: The Movie",
		"Dororo (2019)",
		"naruto shippuden",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeCaseInsensitive(t *testing.T) {
	if Normalize("ONE PIECE (TV)") != Normalize("one piece (tv)") {
		t.Error("Normalize should be case-insensitive")
	}
	if Normalize("ONE PIECE (TV)") != "one piece" {
		t.Errorf("Normalize(\"ONE PIECE (TV)\") = %q, want \"one piece\"", Normalize("ONE PIECE (TV)"))
	}
}
