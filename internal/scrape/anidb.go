package scrape

import (
	"encoding/xml"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"animehub/pkg/fault"
	"animehub/pkg/models"
)

// crunchyrollResource is AniDB's resource type code for Crunchyroll links.
const crunchyrollResource = 28

type animeXML struct {
	ID           int          `xml:"id,attr"`
	Restricted   string       `xml:"restricted,attr"`
	AnimeType    string       `xml:"type"`
	EpisodeCount *int         `xml:"episodecount"`
	StartDate    string       `xml:"startdate"`
	EndDate      string       `xml:"enddate"`
	Titles       []titleXML   `xml:"titles>title"`
	URL          string       `xml:"url"`
	Description  string       `xml:"description"`
	Episodes     []episodeXML `xml:"episodes>episode"`
}

type titleXML struct {
	Lang  string `xml:"lang,attr"`
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type episodeXML struct {
	ID        int               `xml:"id,attr"`
	Update    string            `xml:"update,attr"`
	Epno      epnoXML           `xml:"epno"`
	Length    *int              `xml:"length"`
	AirDate   string            `xml:"airdate"`
	Titles    []episodeTitleXML `xml:"title"`
	Summary   string            `xml:"summary"`
	Resources []resourceXML     `xml:"resources>resource"`
}

type epnoXML struct {
	Type  int    `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type episodeTitleXML struct {
	Lang  string `xml:"lang,attr"`
	Value string `xml:",chardata"`
}

type resourceXML struct {
	Type       int    `xml:"type,attr"`
	Identifier string `xml:"externalentity>identifier"`
}

type errorXML struct {
	Message string `xml:",chardata"`
}

// ParseAniDBResponse turns an AniDB HTTP API anime response into structured
// series data. Regular episodes only (epno type 1); episodes without a
// parseable update date are dropped with a log line. AniDB error envelopes
// fail the parse.
func ParseAniDBResponse(body string) (*models.AniDBSeries, error) {
	if strings.Contains(body, "<error>") {
		var apiErr errorXML
		if err := xml.Unmarshal([]byte(body), &apiErr); err == nil && apiErr.Message != "" {
			return nil, fault.New(fault.TransportFailure, "anidb",
				fmt.Sprintf("anidb api error: %s", strings.TrimSpace(apiErr.Message)))
		}
		return nil, fault.New(fault.TransportFailure, "anidb", "anidb api returned an error")
	}

	var anime animeXML
	if err := xml.Unmarshal([]byte(body), &anime); err != nil {
		return nil, fault.Wrap(fault.ParseFailure, "anidb", "parsing anidb xml", err)
	}

	titleMain, titleJA, titleEN := pickTitles(anime.Titles)

	series := &models.AniDBSeries{
		AnimeID:      anime.ID,
		Restricted:   anime.Restricted == "true",
		AnimeType:    titleOrUnknown(anime.AnimeType),
		EpisodeCount: anime.EpisodeCount,
		StartDate:    parseDate(anime.StartDate),
		EndDate:      parseDate(anime.EndDate),
		TitleMain:    titleMain,
		TitleJA:      titleJA,
		TitleEN:      titleEN,
		Description:  optional(anime.Description),
		OfficialURL:  optional(anime.URL),
	}

	for _, ep := range anime.Episodes {
		if ep.Epno.Type != 1 {
			continue
		}
		parsed, err := parseEpisode(ep)
		if err != nil {
			log.Printf("[anidb] dropping episode %d: %v", ep.ID, err)
			continue
		}
		series.Episodes = append(series.Episodes, parsed)
	}
	return series, nil
}

func parseEpisode(ep episodeXML) (models.AniDBEpisode, error) {
	updateDate, err := time.Parse("2006-01-02", ep.Update)
	if err != nil {
		return models.AniDBEpisode{}, fmt.Errorf("bad update date %q", ep.Update)
	}

	number, _ := strconv.Atoi(strings.TrimSpace(ep.Epno.Value))

	var titleJA, titleEN *string
	for i, t := range ep.Titles {
		switch {
		case (t.Lang == "ja" || t.Lang == "x-jat") && titleJA == nil:
			titleJA = &ep.Titles[i].Value
		case t.Lang == "en" && titleEN == nil:
			titleEN = &ep.Titles[i].Value
		}
	}

	var crunchyrollID *string
	for i, res := range ep.Resources {
		if res.Type == crunchyrollResource && res.Identifier != "" {
			crunchyrollID = &ep.Resources[i].Identifier
			break
		}
	}

	return models.AniDBEpisode{
		EpisodeID:     ep.ID,
		UpdateDate:    updateDate,
		Number:        number,
		NumberType:    ep.Epno.Type,
		Length:        ep.Length,
		AirDate:       parseDate(ep.AirDate),
		TitleJA:       titleJA,
		TitleEN:       titleEN,
		Summary:       optional(ep.Summary),
		CrunchyrollID: crunchyrollID,
	}, nil
}

// pickTitles selects the main title plus the Japanese (native, then
// romanized) and English titles when present.
func pickTitles(titles []titleXML) (main string, ja, en *string) {
	main = "Unknown"
	for i, t := range titles {
		if t.Type == "main" {
			main = titles[i].Value
			break
		}
	}
	for i, t := range titles {
		if t.Lang == "ja" {
			ja = &titles[i].Value
			break
		}
	}
	if ja == nil {
		for i, t := range titles {
			if t.Lang == "x-jat" {
				ja = &titles[i].Value
				break
			}
		}
	}
	for i, t := range titles {
		if t.Lang == "en" {
			en = &titles[i].Value
			break
		}
	}
	return main, ja, en
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &d
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func titleOrUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
