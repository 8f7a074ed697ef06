package titles

import (
	"strings"
	"testing"

	"animehub/pkg/models"
)

func TestParseDump(t *testing.T) {
	input := strings.Join([]string{
		"# anime-titles",
		"# created: Sat, 30 Aug 2026 02:00:02 GMT",
		"1|1|x-jat|CotS",
		"1|4|en|Crest of the Stars",
		"",
		"1|2|en|Crest of the Stars | Special Edition",
		"20|1|x-jat|Naruto",
	}, "\n")

	dump, err := ParseDump(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseDump: %v", err)
	}

	if dump.Created != "Sat, 30 Aug 2026 02:00:02 GMT" {
		t.Errorf("Created = %q, want header timestamp", dump.Created)
	}
	if len(dump.Entries) != 4 {
		t.Fatalf("len(Entries) = %d, want 4", len(dump.Entries))
	}

	first := dump.Entries[0]
	if first.AnimeID != 1 || first.Kind != models.TitlePrimary || first.Language != "x-jat" || first.Title != "CotS" {
		t.Errorf("first entry = %+v", first)
	}

	// Pipes inside the title stay part of the title.
	piped := dump.Entries[2]
	if piped.Title != "Crest of the Stars | Special Edition" {
		t.Errorf("piped title = %q", piped.Title)
	}
}

func TestParseDumpSkipsMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		"not-a-number|1|en|Broken",
		"1|99|en|Unknown kind",
		"1|1|en",
		"1|1||No language",
		"2|4|en|Survivor",
	}, "\n")

	dump, err := ParseDump(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseDump: %v", err)
	}
	if len(dump.Entries) != 1 {
		t.Fatalf("len(Entries) = %d, want 1", len(dump.Entries))
	}
	if dump.Entries[0].Title != "Survivor" {
		t.Errorf("surviving entry = %+v", dump.Entries[0])
	}
}

func TestParseDumpEmpty(t *testing.T) {
	dump, err := ParseDump(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseDump: %v", err)
	}
	if len(dump.Entries) != 0 {
		t.Errorf("len(Entries) = %d, want 0", len(dump.Entries))
	}
}
