package query

import (
	"regexp"
	"strconv"
	"strings"

	"mspro-labs/flat-scout/internal/models"
)

// DefaultBaseURL is the listing site root used when no base URL is configured.
const DefaultBaseURL = "https://www.olx.pl/"

const (
	paramMinPrice = "search%5Bfilter_float_price%3Afrom%5D="
	paramMaxPrice = "search%5Bfilter_float_price%3Ato%5D="
	paramRadius   = "search%5Bdist%5D="
	paramRoomSize = "search%5Bfilter_enum_roomsize%5D%5B0%5D="
)

var categoryPaths = map[models.OfferType]string{
	models.Flat:  "nieruchomosci/mieszkania/",
	models.Room:  "nieruchomosci/stancje-pokoje/",
	models.House: "nieruchomosci/domy/",
}

var reWhitespace = regexp.MustCompile(`\s+`)

// Builder turns a FilterSpec into a listing page URL.
type Builder struct {
	BaseURL string
}

// Build uses DefaultBaseURL.
func Build(spec models.FilterSpec) string {
	return Builder{}.Build(spec)
}

// Build is deterministic: the same spec always yields the same string.
func (b Builder) Build(spec models.FilterSpec) string {
	base := b.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString(categoryPaths[spec.OfferType])

	if place := normalize(spec.Place); place != "" {
		sb.WriteString("q-")
		sb.WriteString(place)
		if q := normalize(spec.Query); q != "" {
			sb.WriteString("-")
			sb.WriteString(q)
		}
		sb.WriteString("/")
	}

	var params []string
	if spec.MinPrice != nil {
		params = append(params, paramMinPrice+strconv.Itoa(*spec.MinPrice))
	}
	if spec.MaxPrice != nil {
		params = append(params, paramMaxPrice+strconv.Itoa(*spec.MaxPrice))
	}
	if spec.Radius != nil {
		params = append(params, paramRadius+strconv.Itoa(*spec.Radius))
	}
	if spec.OfferType == models.Room && spec.RoomType != models.RoomTypeUnset {
		params = append(params, paramRoomSize+spec.RoomType.String())
	}
	if len(params) > 0 {
		sb.WriteString("?")
		sb.WriteString(strings.Join(params, "&"))
	}

	return sb.String()
}

func normalize(s string) string {
	return reWhitespace.ReplaceAllString(strings.TrimSpace(s), "-")
}
