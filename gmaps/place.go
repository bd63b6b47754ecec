package gmaps

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrMissingDataParam = errors.New("'data' parameter not found in URL")
	ErrInvalidPlaceURL  = errors.New("invalid place URL")
)

const (
	querySegment  = 3
	coordsSegment = 4
)

var dataParamRe = regexp.MustCompile(`data=(!.+)`)

// PlaceQuery is what a place search needs: free text and a map center.
type PlaceQuery struct {
	Query     string
	Latitude  float64
	Longitude float64
}

// LL renders the center in the @lat,lng,<zoom>z form used by map URLs.
func (q PlaceQuery) LL(zoom int) string {
	return fmt.Sprintf("@%s,%s,%dz", formatCoord(q.Latitude), formatCoord(q.Longitude), zoom)
}

func formatCoord(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}

	return s
}

// ParsePlaceURL extracts the query and coordinates from a place share URL:
//
//	https://www.google.com/maps/place/<query>/@<lat>,<lng>,<zoom>z/data=!...
//
// The data= payload must be present but is not inspected. Coordinates are not
// range checked.
func ParsePlaceURL(raw string) (PlaceQuery, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return PlaceQuery{}, fmt.Errorf("%w: %s: %v", ErrInvalidPlaceURL, raw, err)
	}

	path := u.EscapedPath()

	if !dataParamRe.MatchString(path) {
		return PlaceQuery{}, fmt.Errorf("%w: %s", ErrMissingDataParam, raw)
	}

	segments := strings.Split(path, "/")
	if len(segments) <= coordsSegment {
		return PlaceQuery{}, fmt.Errorf("%w: %s: expected at least %d path segments", ErrInvalidPlaceURL, raw, coordsSegment+1)
	}

	query, err := url.QueryUnescape(segments[querySegment])
	if err != nil {
		return PlaceQuery{}, fmt.Errorf("%w: %s: %v", ErrInvalidPlaceURL, raw, err)
	}

	lat, lng, err := parseCoordinates(segments[coordsSegment])
	if err != nil {
		return PlaceQuery{}, fmt.Errorf("%w: %s: %v", ErrInvalidPlaceURL, raw, err)
	}

	return PlaceQuery{
		Query:     query,
		Latitude:  lat,
		Longitude: lng,
	}, nil
}

func parseCoordinates(segment string) (lat, lng float64, err error) {
	segment, err = url.PathUnescape(segment)
	if err != nil {
		return 0, 0, err
	}

	_, after, ok := strings.Cut(segment, "@")
	if !ok {
		return 0, 0, fmt.Errorf("no '@' in %q", segment)
	}

	parts := strings.Split(after, ",")
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("expected latitude and longitude in %q", segment)
	}

	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude: %w", err)
	}

	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude: %w", err)
	}

	return lat, lng, nil
}
