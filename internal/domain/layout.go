package domain

// Layout describes the textual landmarks of one version of the feed.
type Layout struct {
	Version string

	// RecordStart marks the line that opens a record.
	RecordStart string

	// TitleOpen and TitleClose wrap the station label on the first line.
	TitleOpen  string
	TitleClose string

	// DateOpen precedes the publication date on the second line. The last
	// DateSuffixLen characters of the remaining text are dropped.
	DateOpen      string
	DateSuffixLen int

	// TempMarker precedes the temperature on the fourth line. TempWidth
	// characters of the trimmed remainder form the numeric literal.
	TempMarker string
	TempWidth  int
}

// LayoutV1 is the CWTG RSS layout as published since 2019.
var LayoutV1 = Layout{
	Version:       "cwtg-rss-v1",
	RecordStart:   "<item>",
	TitleOpen:     "<title>",
	TitleClose:    "</title>",
	DateOpen:      "<pubDate>",
	DateSuffixLen: len("</pubDate>"),
	TempMarker:    "</strong>",
	TempWidth:     4,
}
