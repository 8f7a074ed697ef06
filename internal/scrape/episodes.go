package scrape

import (
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"animehub/pkg/fault"
	"animehub/pkg/models"
)

// epochDate stands in for rows whose date cell is missing or unparseable.
var epochDate = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// ExtractEpisodes pulls the episode rows out of a filler-list page. Rows are
// returned in document order; AbsoluteNumber counts from 1 across all rows.
// Cell-level problems degrade per field rather than dropping the row: a bad
// number becomes 0, a bad date becomes the epoch, a missing title becomes
// "Untitled", an unknown type becomes Canon.
func ExtractEpisodes(html string) ([]models.RawEpisode, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fault.Wrap(fault.ParseFailure, "extract", "parsing episode list html", err)
	}

	var eps []models.RawEpisode
	absolute := 0
	doc.Find("table.EpisodeList tbody tr").Each(func(_ int, row *goquery.Selection) {
		absolute++

		number, _ := strconv.Atoi(cellText(row, "td.Number"))

		title := cellText(row, "td.Title")
		if title == "" {
			title = "Untitled"
		}

		airDate := epochDate
		if d, err := time.Parse("2006-01-02", cellText(row, "td.Date")); err == nil {
			airDate = d
		}

		eps = append(eps, models.RawEpisode{
			Number:         number,
			AbsoluteNumber: absolute,
			Title:          title,
			AirDate:        airDate,
			Kind:           models.ParseEpisodeKind(cellText(row, "td.Type")),
		})
	})

	return eps, nil
}

func cellText(row *goquery.Selection, selector string) string {
	return strings.TrimSpace(row.Find(selector).First().Text())
}
