package scrape

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"animehub/pkg/models"
)

func episodePage(rows ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><table class="EpisodeList"><tbody>`)
	for _, r := range rows {
		b.WriteString(r)
	}
	b.WriteString(`</tbody></table></body></html>`)
	return b.String()
}

func row(num, title, kind, date string) string {
	return fmt.Sprintf(
		`<tr><td class="Number">%s</td><td class="Title"><a href="#">%s</a></td><td class="Type">%s</td><td class="Date">%s</td></tr>`,
		num, title, kind, date)
}

func TestExtractEpisodes(t *testing.T) {
	html := episodePage(
		row("1", "The Day I Became a Shinigami", "Canon", "2004-10-05"),
		row("2", "A Shinigami's Work", "Canon", "2004-10-12"),
		row("33", "Rock 'n Roll Heaven", "Filler", "2005-05-24"),
	)

	eps, err := ExtractEpisodes(html)
	if err != nil {
		t.Fatalf("ExtractEpisodes: %v", err)
	}
	if len(eps) != 3 {
		t.Fatalf("len(eps) = %d, want 3", len(eps))
	}

	first := eps[0]
	if first.Number != 1 || first.AbsoluteNumber != 1 {
		t.Errorf("first row numbers = (%d, %d), want (1, 1)", first.Number, first.AbsoluteNumber)
	}
	if first.Title != "The Day I Became a Shinigami" {
		t.Errorf("first title = %q", first.Title)
	}
	if first.Kind != models.KindCanon {
		t.Errorf("first kind = %v, want Canon", first.Kind)
	}
	if want := time.Date(2004, 10, 5, 0, 0, 0, 0, time.UTC); !first.AirDate.Equal(want) {
		t.Errorf("first airdate = %v, want %v", first.AirDate, want)
	}

	if eps[2].Kind != models.KindFiller {
		t.Errorf("third kind = %v, want Filler", eps[2].Kind)
	}
	if eps[2].AbsoluteNumber != 3 {
		t.Errorf("third absolute = %d, want 3", eps[2].AbsoluteNumber)
	}
}

func TestExtractEpisodesDegradedCells(t *testing.T) {
	html := episodePage(
		row("not-a-number", "", "Something Unknown", "not-a-date"),
		row("7", "Fine", "Mixed", "2010-03-01"),
	)

	eps, err := ExtractEpisodes(html)
	if err != nil {
		t.Fatalf("ExtractEpisodes: %v", err)
	}
	if len(eps) != 2 {
		t.Fatalf("len(eps) = %d, want 2", len(eps))
	}

	bad := eps[0]
	if bad.Number != 0 {
		t.Errorf("unparseable number = %d, want 0", bad.Number)
	}
	if bad.AbsoluteNumber != 1 {
		t.Errorf("absolute still counts: got %d, want 1", bad.AbsoluteNumber)
	}
	if bad.Title != "Untitled" {
		t.Errorf("missing title = %q, want Untitled", bad.Title)
	}
	if bad.Kind != models.KindCanon {
		t.Errorf("unknown type = %v, want Canon", bad.Kind)
	}
	if !bad.AirDate.Equal(epochDate) {
		t.Errorf("bad date = %v, want epoch", bad.AirDate)
	}

	if eps[1].Kind != models.KindMixed || eps[1].Number != 7 {
		t.Errorf("second row = %+v", eps[1])
	}
}

func TestExtractEpisodesEmptyPage(t *testing.T) {
	eps, err := ExtractEpisodes("<html><body><p>no table here</p></body></html>")
	if err != nil {
		t.Fatalf("ExtractEpisodes: %v", err)
	}
	if len(eps) != 0 {
		t.Errorf("len(eps) = %d, want 0", len(eps))
	}
}

func TestExtractEpisodesLongSeries(t *testing.T) {
	rows := make([]string, 0, 131)
	for i := 1; i <= 131; i++ {
		kind := "Canon"
		title := fmt.Sprintf("Episode %d", i)
		if i == 131 {
			kind = "Filler"
			title = "THE FIRST PATIENT"
		}
		rows = append(rows, row(fmt.Sprintf("%d", i), title, kind, "2006-01-02"))
	}

	eps, err := ExtractEpisodes(episodePage(rows...))
	if err != nil {
		t.Fatalf("ExtractEpisodes: %v", err)
	}
	if len(eps) != 131 {
		t.Fatalf("len(eps) = %d, want 131", len(eps))
	}
	for i, ep := range eps {
		if ep.Number != i+1 || ep.AbsoluteNumber != i+1 {
			t.Fatalf("row %d numbers = (%d, %d)", i, ep.Number, ep.AbsoluteNumber)
		}
	}
	last := eps[130]
	if last.Kind != models.KindFiller || last.Title != "THE FIRST PATIENT" {
		t.Errorf("last row = %+v", last)
	}
}
