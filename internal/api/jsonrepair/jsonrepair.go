// Package jsonrepair recovers structured data from model-generated text
// that is supposed to be JSON but frequently is not: fenced in markdown,
// wrapped in prose, quoted with smart quotes, missing key quotes, carrying
// trailing commas or price ranges, or cut off mid-token by a token limit.
//
// Recovery is an ordered fallback chain that stops at the first stage
// whose output parses. Each repair stage is a pure string transform so it
// can be exercised in isolation.
package jsonrepair

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Stage names identify which link of the fallback chain produced (or
// failed to produce) a parseable payload.
const (
	StageDirect     = "direct"
	StageFenceStrip = "fence_strip"
	StageNormalize  = "normalize"
	StageAggressive = "aggressive"
)

const failureSnippetLen = 240

// Result carries the JSON text that finally parsed and the name of the
// stage that produced it. Re-running Extract on Raw short-circuits at the
// direct stage and yields the same structure.
type Result struct {
	Raw   []byte
	Stage string
}

// ParseFailure reports that no stage of the fallback chain produced
// parseable JSON. Offset is the byte position from the parser's error
// when one was available, -1 otherwise. Callers are expected to absorb
// the failure and substitute a category-specific default.
type ParseFailure struct {
	Stage   string
	Offset  int64
	Content string
}

func (e *ParseFailure) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("jsonrepair: no stage produced valid JSON (last stage %s, parse error at offset %d)", e.Stage, e.Offset)
	}
	return fmt.Sprintf("jsonrepair: no stage produced valid JSON (last stage %s)", e.Stage)
}

// Extract runs the fallback chain over content and returns the first
// candidate that parses as JSON. Empty input fails immediately.
func Extract(content string) (*Result, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, &ParseFailure{Stage: StageDirect, Offset: -1, Content: ""}
	}

	directErr := tryParse(trimmed)
	if directErr == nil {
		return &Result{Raw: []byte(trimmed), Stage: StageDirect}, nil
	}

	bounded := sliceJSONBounds(stripCodeFences(trimmed))
	if res := attempt(bounded, StageFenceStrip); res != nil {
		return res, nil
	}

	normalized := normalize(bounded)
	if res := attempt(normalized, StageNormalize); res != nil {
		return res, nil
	}

	aggressive := aggressiveRepair(normalized)
	if res := attempt(aggressive, StageAggressive); res != nil {
		return res, nil
	}

	return nil, &ParseFailure{
		Stage:   StageAggressive,
		Offset:  parseOffset(directErr),
		Content: snippet(content),
	}
}

// ExtractInto runs Extract and unmarshals the recovered JSON into dst.
// The returned stage names the chain link that produced the payload.
//
// A payload can be valid JSON yet not fit dst, most often because a
// numeric field arrived as a quoted range ("35-40"); those survive the
// generic parse untouched, so a shape mismatch triggers one normalize
// pass before giving up. A payload that still does not fit is a plain
// error, not a ParseFailure: shape enforcement belongs to the caller.
func ExtractInto(content string, dst any) (string, error) {
	res, err := Extract(content)
	if err != nil {
		return "", err
	}
	shapeErr := json.Unmarshal(res.Raw, dst)
	if shapeErr == nil {
		return res.Stage, nil
	}
	if repaired := normalize(string(res.Raw)); repaired != string(res.Raw) {
		if err := json.Unmarshal([]byte(repaired), dst); err == nil {
			return StageNormalize, nil
		}
	}
	return res.Stage, fmt.Errorf("jsonrepair: recovered JSON does not match target shape: %w", shapeErr)
}

// attempt parses candidate and, when that fails on what looks like a
// truncated payload, retries with the open containers closed after the
// last complete element.
func attempt(candidate, stage string) *Result {
	if candidate == "" {
		return nil
	}
	if tryParse(candidate) == nil {
		return &Result{Raw: []byte(candidate), Stage: stage}
	}
	if closed := closeTruncated(candidate); closed != candidate {
		if tryParse(closed) == nil {
			return &Result{Raw: []byte(closed), Stage: stage}
		}
	}
	return nil
}

func tryParse(s string) error {
	var v any
	return json.Unmarshal([]byte(s), &v)
}

func parseOffset(err error) int64 {
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		return syn.Offset
	}
	return -1
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > failureSnippetLen {
		return s[:failureSnippetLen]
	}
	return s
}
