package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Drama is a title as sent by the catalog API
type Drama struct {
	BookID       string     `json:"bookId"`
	BookName     string     `json:"bookName"`
	CoverWap     string     `json:"coverWap"`
	Cover        string     `json:"cover,omitempty"`
	Introduction string     `json:"introduction"`
	ChapterCount flexInt    `json:"chapterCount"`
	TagNames     []string   `json:"tagNames"`
	PlayCount    flexString `json:"playCount"`
}

// Chapter is an episode as sent by the allepisode endpoint
type Chapter struct {
	ChapterID    string    `json:"chapterId"`
	ChapterIndex flexInt   `json:"chapterIndex"`
	ChapterName  string    `json:"chapterName"`
	CdnList      []CdnList `json:"cdnList"`
}

// CdnList is a CDN entry of a chapter
type CdnList struct {
	CdnDomain     string      `json:"cdnDomain"`
	VideoPathList []VideoPath `json:"videoPathList"`
}

// VideoPath is one rendition of a chapter
type VideoPath struct {
	Quality   flexInt `json:"quality"`
	VideoPath string  `json:"videoPath"`
}

// SearchTerm is a suggestion or popular-search entry. The API sends either
// bare strings or objects carrying the term in one of several fields.
type SearchTerm struct {
	Query    string `json:"query"`
	Keyword  string `json:"keyword"`
	BookName string `json:"bookName"`
}

// Text returns the first non-empty term field
func (s SearchTerm) Text() string {
	for _, v := range []string{s.Query, s.Keyword, s.BookName} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// ErrorResponse is the error body some endpoints return with non-2xx codes
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// flexString accepts JSON strings and numbers
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(string(b))
	return nil
}

// flexInt accepts JSON numbers and numeric strings; anything else decodes as 0
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(int(n))
	return nil
}
