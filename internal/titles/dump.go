package titles

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"animehub/pkg/fault"
	"animehub/pkg/models"
)

// Dump is the parsed contents of an anime-titles snapshot.
type Dump struct {
	Entries []models.TitleEntry
	// Created is the generation timestamp from the dump header, verbatim.
	Created string
}

const createdPrefix = "# created: "

// ParseDump reads the pipe-delimited titles file:
//
//	<aid>|<type>|<lang>|<title>
//
// Comment lines start with '#'; the "# created:" header is kept. Malformed
// rows are logged and skipped so one bad line cannot sink a 500k-row import.
func ParseDump(r io.Reader) (*Dump, error) {
	dump := &Dump{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if strings.HasPrefix(line, createdPrefix) {
				dump.Created = strings.TrimSpace(strings.TrimPrefix(line, createdPrefix))
			}
			continue
		}

		entry, err := parseLine(line)
		if err != nil {
			log.Printf("[titles] skipping line %d: %v", lineNo, err)
			continue
		}
		dump.Entries = append(dump.Entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fault.New(fault.ParseFailure, "titles", fmt.Sprintf("reading dump: %v", err))
	}
	return dump, nil
}

func parseLine(line string) (models.TitleEntry, error) {
	// Titles may themselves contain '|', so split only the first three.
	parts := strings.SplitN(line, "|", 4)
	if len(parts) != 4 {
		return models.TitleEntry{}, fmt.Errorf("want 4 fields, got %d", len(parts))
	}

	animeID, err := strconv.Atoi(parts[0])
	if err != nil {
		return models.TitleEntry{}, fmt.Errorf("bad anime id %q", parts[0])
	}
	kindCode, err := strconv.Atoi(parts[1])
	if err != nil {
		return models.TitleEntry{}, fmt.Errorf("bad title kind %q", parts[1])
	}
	kind := models.TitleKind(kindCode)
	if !kind.Valid() {
		return models.TitleEntry{}, fmt.Errorf("unknown title kind %d", kindCode)
	}

	lang := strings.TrimSpace(parts[2])
	title := strings.TrimSpace(parts[3])
	if lang == "" || title == "" {
		return models.TitleEntry{}, fmt.Errorf("empty language or title")
	}

	return models.TitleEntry{
		AnimeID:  animeID,
		Title:    title,
		Kind:     kind,
		Language: lang,
	}, nil
}
