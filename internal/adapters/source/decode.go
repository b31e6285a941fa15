package source

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"zayavki/internal/core/pipeline"
	perr "zayavki/internal/platform/errors"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Format names an input encoding
type Format string

const (
	// FormatAuto sniffs the payload
	FormatAuto Format = "auto"
	// FormatJSON is a JSON array of records
	FormatJSON Format = "json"
	// FormatGeoJSON is a FeatureCollection of Point features
	FormatGeoJSON Format = "geojson"
	// FormatCSV is a header row plus one record per line, comma or semicolon separated
	FormatCSV Format = "csv"
)

// Charset names an input text encoding
type Charset string

const (
	// CharsetAuto keeps valid UTF-8 and decodes anything else as Windows-1251
	CharsetAuto Charset = "auto"
	// CharsetUTF8 trusts the payload
	CharsetUTF8 Charset = "utf-8"
	// CharsetCP1251 always decodes Windows-1251
	CharsetCP1251 Charset = "cp1251"
)

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// record is the loose wire shape shared by every format
type record struct {
	CreatedAt string          `json:"created_at"`
	Category  *string         `json:"category"`
	Lat       pipeline.Number `json:"lat"`
	Lon       pipeline.Number `json:"lon"`
	Total     pipeline.Number `json:"Всего"`
	Street    pipeline.Text   `json:"Улица"`
	House     pipeline.Text   `json:"Дом"`
}

// decompress unwraps zstd frames when the payload starts with the zstd magic number
func decompress(b []byte) ([]byte, error) {
	if !bytes.HasPrefix(b, zstdMagic) {
		return b, nil
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeSource, "zstd init")
	}
	defer dec.Close()
	out, err := dec.DecodeAll(b, nil)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeSource, "zstd decode")
	}
	return out, nil
}

// toUTF8 applies the charset policy
func toUTF8(b []byte, cs Charset) ([]byte, error) {
	b = bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))
	switch cs {
	case CharsetUTF8:
		return b, nil
	case CharsetCP1251:
	default:
		if utf8.Valid(b) {
			return b, nil
		}
	}
	out, _, err := transform.Bytes(charmap.Windows1251.NewDecoder(), b)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeSource, "cp1251 decode")
	}
	return out, nil
}

// detect picks a format from the location name, falling back to the first significant byte
func detect(location string, b []byte) Format {
	name := strings.ToLower(location)
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSuffix(name, ".zst")
	switch path.Ext(name) {
	case ".geojson":
		return FormatGeoJSON
	case ".csv":
		return FormatCSV
	}
	t := bytes.TrimSpace(b)
	if len(t) == 0 {
		return FormatJSON
	}
	switch t[0] {
	case '[':
		return FormatJSON
	case '{':
		return FormatGeoJSON
	}
	return FormatCSV
}

func decodeJSON(b []byte) ([]record, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}
	var recs []record
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "decode dataset array")
	}
	return recs, nil
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Geometry *struct {
		Type        string            `json:"type"`
		Coordinates []pipeline.Number `json:"coordinates"`
	} `json:"geometry"`
	Properties json.RawMessage `json:"properties"`
}

func decodeGeoJSON(b []byte) ([]record, error) {
	var fc featureCollection
	if err := json.Unmarshal(b, &fc); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "decode feature collection")
	}
	if fc.Type != "FeatureCollection" {
		return nil, perr.JSONErrf("geojson: expected FeatureCollection, got %q", fc.Type)
	}
	recs := make([]record, 0, len(fc.Features))
	for i, f := range fc.Features {
		var r record
		if len(f.Properties) > 0 && string(f.Properties) != "null" {
			if err := json.Unmarshal(f.Properties, &r); err != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "decode feature %d properties", i)
			}
		}
		// GeoJSON positions are [lon, lat]
		if g := f.Geometry; g != nil && g.Type == "Point" && len(g.Coordinates) >= 2 {
			r.Lon, r.Lat = g.Coordinates[0], g.Coordinates[1]
		}
		recs = append(recs, r)
	}
	return recs, nil
}

func decodeCSV(b []byte) ([]record, error) {
	cr := csv.NewReader(bytes.NewReader(b))
	cr.Comma = sniffComma(b)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeSource, "read csv header")
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	cell := func(row []string, name string) (string, bool) {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[i]), true
	}

	var recs []record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeSource, "read csv line %d", line)
		}
		var r record
		r.CreatedAt, _ = cell(row, "created_at")
		if c, ok := cell(row, "category"); ok {
			r.Category = &c
		}
		s, _ := cell(row, "Улица")
		h, _ := cell(row, "Дом")
		r.Street, r.House = pipeline.Text(s), pipeline.Text(h)
		for name, dst := range map[string]*pipeline.Number{"lat": &r.Lat, "lon": &r.Lon, "Всего": &r.Total} {
			v, _ := cell(row, name)
			n, err := pipeline.ParseNumber(v)
			if err != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeSource, "csv line %d column %s", line, name)
			}
			*dst = n
		}
		recs = append(recs, r)
	}
	return recs, nil
}

// sniffComma prefers ';' when the header row has more of them than commas (Excel ru-RU exports)
func sniffComma(b []byte) rune {
	first, _, _ := bytes.Cut(b, []byte("\n"))
	if bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		return ';'
	}
	return ','
}

// toPoints applies the load-time cleanup and reports how many records were dropped
func toPoints(recs []record) (pts []pipeline.Point, dropped int) {
	pts = make([]pipeline.Point, 0, len(recs))
	for _, r := range recs {
		if !r.Lat.Valid || !r.Lon.Valid {
			dropped++
			continue
		}
		cat := pipeline.UnknownCategory
		if r.Category != nil && strings.TrimSpace(*r.Category) != "" {
			cat = *r.Category
		}
		pts = append(pts, pipeline.Point{
			CreatedAt: r.CreatedAt,
			Category:  cat,
			Lat:       r.Lat.V,
			Lon:       r.Lon.V,
			Total:     r.Total,
			Street:    r.Street,
			House:     r.House,
		})
	}
	return pts, dropped
}
