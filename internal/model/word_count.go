package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// WordCount is a single word and the number of times it was seen.
type WordCount struct {
	// Word is the normalized word.
	Word string `json:"word"`

	// Count is the total number of occurrences across all visited pages.
	Count int `json:"count"`
}

// WordCounts is an ordered list of word counts.
//
// Design decision: We keep the ranking as a slice rather than a map because
// Go maps have no iteration order. The JSON form is still an object
// ({"word": count, ...}) so that result files keep the familiar layout, and
// the marshaller writes the keys in slice order.
type WordCounts []WordCount

// Map returns the counts as an unordered map.
func (wc WordCounts) Map() map[string]int {
	m := make(map[string]int, len(wc))
	for _, c := range wc {
		m[c.Word] = c.Count
	}
	return m
}

// Total returns the sum of all counts.
func (wc WordCounts) Total() int {
	total := 0
	for _, c := range wc {
		total += c.Count
	}
	return total
}

// MarshalJSON writes the counts as a JSON object preserving slice order.
func (wc WordCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range wc {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Word)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(c.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// errWordCountsNotObject is returned when the JSON value is not an object.
var errWordCountsNotObject = errors.New("word counts must be a JSON object")

// UnmarshalJSON reads a JSON object into WordCounts, keeping the key order
// found in the document.
func (wc *WordCounts) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*wc = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errWordCountsNotObject
	}

	result := make(WordCounts, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v", keyTok)
		}
		var count int
		if err := dec.Decode(&count); err != nil {
			return fmt.Errorf("invalid count for %q: %w", key, err)
		}
		result = append(result, WordCount{Word: key, Count: count})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*wc = result
	return nil
}
