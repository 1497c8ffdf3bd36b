// Package export renders place collections as CSV for bulk download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"Placemap/internal/core/places"
	"Placemap/internal/core/ratings"
	"Placemap/internal/core/tags"
)

// csvHeader is the fixed column layout of the entry export. Clients parse by
// position, so the order never changes.
var csvHeader = []string{
	"id", "osm_node", "created", "version", "title", "description",
	"lat", "lng", "street", "zip", "city", "country", "homepage",
	"categories", "tags", "license", "avg_rating",
}

// Entry is one place revision paired with its rating averages.
type Entry struct {
	Place      places.Place
	AvgRatings ratings.AvgRatings
}

// WritePlacesCSV streams the given entries as UTF-8 CSV with a header row.
func WritePlacesCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for i := range entries {
		if err := cw.Write(entryRecord(&entries[i])); err != nil {
			return fmt.Errorf("writing csv record for %s: %w", entries[i].Place.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func entryRecord(e *Entry) []string {
	p := &e.Place

	var osmNode string
	if p.OSMNode != nil {
		osmNode = strconv.FormatInt(*p.OSMNode, 10)
	}
	var street, zip, city, country string
	if a := p.Location.Address; a != nil {
		street, zip, city, country = a.Street, a.Zip, a.City, a.Country
	}
	var homepage string
	if p.Links != nil {
		homepage = p.Links.Homepage
	}
	categories, rest := tagSplit(p.Tags)

	return []string{
		p.ID,
		osmNode,
		strconv.FormatInt(p.Created.At.Unix(), 10),
		strconv.FormatUint(p.Revision, 10),
		p.Title,
		p.Description,
		formatCoord(p.Location.Pos.Lat),
		formatCoord(p.Location.Pos.Lng),
		street,
		zip,
		city,
		country,
		homepage,
		categories,
		rest,
		p.License,
		strconv.FormatFloat(e.AvgRatings.Total(), 'f', -1, 64),
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// tagSplit renders the categories column as comma-joined category ids and the
// tags column as the remaining free-form tags.
func tagSplit(tagList []string) (categories, rest string) {
	cats, free := tags.SplitCategories(tagList)
	ids := make([]string, len(cats))
	for i, c := range cats {
		ids[i] = c.ID
	}
	return strings.Join(ids, ","), strings.Join(free, ",")
}
