package planner

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
)

var (
	errNoArray = errors.New("no JSON array found in response")

	fencePattern = regexp.MustCompile("(?s)```[A-Za-z]*\\s*(.*?)\\s*```")
)

// ExtractPlanJSON pulls the outline array out of free-form model text. A fenced
// code block wins when present; otherwise the text between the first '[' and
// the last ']' is taken, which covers bare arrays and arrays wrapped in prose.
func ExtractPlanJSON(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(candidate); m != nil {
		candidate = strings.TrimSpace(m[1])
	}
	start := strings.Index(candidate, "[")
	end := strings.LastIndex(candidate, "]")
	if start < 0 || end < start {
		return "", errNoArray
	}
	return candidate[start : end+1], nil
}

// ParseOutline extracts and decodes the outline. Comments and trailing commas
// are tolerated. Null entries and entries without a title are dropped.
func ParseOutline(raw string) ([]SectionSpec, error) {
	arr, err := ExtractPlanJSON(raw)
	if err != nil {
		return nil, err
	}

	var entries []*rawSection
	if err := json.Unmarshal(jsonc.ToJSON([]byte(arr)), &entries); err != nil {
		return nil, fmt.Errorf("decode outline: %w", err)
	}

	sections := make([]SectionSpec, 0, len(entries))
	for _, e := range entries {
		if e == nil || strings.TrimSpace(e.Title) == "" {
			continue
		}
		title := strings.TrimSpace(e.Title)
		sections = append(sections, SectionSpec{
			Index:          int(e.SectionNumber),
			Title:          title,
			Description:    strings.TrimSpace(e.Description),
			TargetWords:    int(e.TargetWords),
			KeyPoints:      []string(e.KeyPoints),
			RetrievalQuery: strings.TrimSpace(e.RAGQuery),
		})
	}
	return sections, nil
}

type rawSection struct {
	SectionNumber flexInt     `json:"section_number"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	TargetWords   flexInt     `json:"target_words"`
	KeyPoints     flexStrings `json:"key_points"`
	RAGQuery      string      `json:"rag_query"`
}

// flexInt accepts 800, 800.0, "800" and "800 words".
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexInt(leadingInt(s))
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return nil
	}
	*f = flexInt(n)
	return nil
}

func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, _ := strconv.Atoi(s[:end])
	return n
}

// flexStrings accepts a list of strings or a single string.
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s = strings.TrimSpace(s); s != "" {
			*f = flexStrings{s}
		}
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			s = string(bytes.TrimSpace(item))
			if s == "null" {
				continue
			}
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	*f = out
	return nil
}
