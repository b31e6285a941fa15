// Package source loads the point dataset the dashboard renders
//
// Design choices:
// - One shot: the payload is read fully into memory, decoded, then handed to pipeline.NewDataset.
// - Location is a file path or an http(s) URL; zstd payloads are detected by magic bytes, not by name.
// - Formats: JSON array of records, GeoJSON FeatureCollection of Point features, CSV with a header row.
// - Spreadsheet exports are often Windows-1251; "auto" charset decodes cp1251 when the bytes are not UTF-8.
// - Records without both coordinates are dropped here and counted; a blank category becomes pipeline.UnknownCategory.
package source
