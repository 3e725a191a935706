// Package domain models NOAA coastal water temperature readings.
//
// # Data Source
//
// Readings originate from the NOAA National Centers for Environmental
// Information (NCEI) Coastal Water Temperature Guide RSS feed, available at
// https://www.nodc.noaa.gov/dsdt/cwtg/rss/all.xml. The feed publishes one
// <item> per station with the station label, a publication date, and the most
// recent water temperature in Fahrenheit.
//
// # Feed Layout (LayoutV1)
//
// The feed is not parsed as a document. Each record is located by fixed
// textual landmarks, one field per line, in this order:
//
//	<item>
//	<title>Boston, MA</title>                     → location (between the tags)
//	<pubDate>Mon, 01 Jan 2024</pubDate>           → date (after <pubDate>, minus 10 trailing chars)
//	<link>https://...</link>                      → ignored, consumed for alignment
//	<description><strong>Temp:</strong> 55.2 F   → temperature (4 chars after </strong>, trimmed)
//
// The temperature window is exactly four characters, which fits "DD.D" and
// "-D.D". Readings with a different digit count are truncated ("100.4" reads
// as "100.") or rejected ("7.5F" is not a number). This mirrors the feed's
// historical shape and is kept as documented behavior. If NOAA changes the
// layout, the extraction silently breaks, so the landmarks live in a
// versioned [Layout] value rather than in scanner code.
//
// # State Matching
//
// Station labels carry no structured state field. A reading belongs to a
// state when the two-letter code appears anywhere in the label, compared
// case-sensitively with no word-boundary check. "Casco Bay, ME" matches "ME",
// and so does "AMELIA ISLAND, FL"; "Time Recorder" does not. Codes read at
// the service and CLI boundaries pass through [NormalizeStateCode], so they
// are always upper case. Callers that need stricter matching filter the
// result themselves. See [Store.ForState].
//
// # Units
//
// Fahrenheit is the only stored representation. Celsius is derived on demand
// with [ToCelsius] and never written back.
package domain
