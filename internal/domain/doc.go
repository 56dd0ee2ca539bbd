// Package domain models normalized SmartGuard buoy measurement data.
//
// # Data Source
//
// Exports originate from the SmartGuard wave buoy datalogger, pulled either
// over the instrument's serial console or from its SD card as .txt/.csv files.
// The export format has drifted across firmware releases, and the pipeline in
// internal/pipeline exists to absorb that drift. Observed variance:
//
//   - Text encoding: UTF-16 (little-endian, usually with a BOM) from SD card
//     dumps, UTF-8 from newer firmware, Latin-1 from the oldest exports.
//   - Preamble: zero to a few dozen lines of station metadata before the
//     column header row. Length is not stable release-to-release, so the
//     header is found by content ("Date" plus a time token), never by offset.
//   - Delimiters: tabs in most exports, runs of spaces in a few, commas in
//     files that have already been round-tripped through this service.
//   - Stray rows: some firmware versions repeat a units row ("units", "m",
//     "s", "deg", ...) below the header. These rows have no parseable
//     timestamp and are dropped during coercion.
//
// # Column Conventions
//
// Raw column names carry a bracketed sensor-channel suffix that is stripped
// during normalization:
//
//	"Significant Wave Height Hm0 [9]"  →  "Significant Wave Height Hm0"
//
// Canonicalized names are then matched against ordered substring rules and
// renamed to the logical fields below. Qualified variants ("Swell Hm0",
// "Wind Peak Direction") are deliberately excluded from the logical mapping
// and pass through under their canonical names.
//
//	Timestamp              mandatory; "Date and time" in native exports
//	SignificantWaveHeight  Hm0, spectral significant wave height (m)
//	PeakPeriod             Tp, period of maximum spectral energy (s)
//	MeanPeriod             Tm02, mean period from the second spectral moment (s)
//	PeakDirection          Dir_Pic, direction of peak wave energy (deg)
//
// # Missing Values
//
// A measurement cell that is empty or non-numeric coerces to an explicit
// missing [Value], never to NaN and never to an absent key: every observation
// carries a value slot for every column in the series. Rows whose timestamp
// cell fails to parse are dropped entirely; a [Series] therefore never holds
// an observation without a valid timestamp, and observations are sorted
// non-decreasing by timestamp (stable, ties keep source order).
//
// # ID Generation
//
// Dataset IDs are deterministic SHA-256 hashes of the upload's exact byte
// content. Identity by content makes reprocessing memoizable — the same file
// uploaded twice short-circuits to the cached outcome — and gives downstream
// consumers a stable key with no coordination. See [ContentID].
package domain
