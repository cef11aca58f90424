package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/eventbook/eventbook/internal/store"
)

// Weekdays accepted for rest days.
var validWeekdays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// Skill ratings accepted in profile updates.
var validSkillRatings = map[string]bool{
	"Basic": true, "Proficient": true, "Expert": true,
}

// ErrNoProfileFields is returned when an update body contains nothing
// updatable.
var ErrNoProfileFields = errors.New("no valid fields to update")

// SanitizeProfileUpdates validates and normalizes an incoming profile
// update body and returns the document fields to write.  Unknown keys are
// ignored; any invalid value rejects the whole update.  Supported fields:
// fullName, age, nationality, languages, homeCountry, restDays, interests,
// skills, profilePicture.
func SanitizeProfileUpdates(body map[string]any) (store.Doc, error) {
	updates := store.Doc{}

	if v, ok := body["fullName"]; ok {
		s, err := requireString(v, "fullName", 1, 100)
		if err != nil {
			return nil, err
		}
		updates["fullName"] = s
		// keep the legacy name field in sync
		updates["name"] = s
	}
	if v, ok := body["age"]; ok {
		age := asInt(v)
		if age < 18 || age > 100 {
			return nil, errors.New("age must be between 18 and 100")
		}
		updates["age"] = age
	}
	if v, ok := body["nationality"]; ok {
		s, err := requireString(v, "nationality", 2, 50)
		if err != nil {
			return nil, err
		}
		updates["nationality"] = s
	}
	if v, ok := body["homeCountry"]; ok {
		s, err := requireString(v, "homeCountry", 2, 50)
		if err != nil {
			return nil, err
		}
		updates["homeCountry"] = s
	}
	if v, ok := body["languages"]; ok {
		langs, err := stringList(v, "languages", 2, 30, 10, true)
		if err != nil {
			return nil, err
		}
		updates["languages"] = stringsDoc(langs)
	}
	if v, ok := body["restDays"]; ok {
		days, err := weekdayList(v)
		if err != nil {
			return nil, err
		}
		updates["restDays"] = stringsDoc(days)
	}
	if v, ok := body["interests"]; ok {
		items, err := stringList(v, "interests", 1, 50, 20, false)
		if err != nil {
			return nil, err
		}
		updates["interests"] = stringsDoc(items)
	}
	if v, ok := body["skills"]; ok {
		skills, err := skillList(v)
		if err != nil {
			return nil, err
		}
		updates["skills"] = skills
	}
	if v, ok := body["profilePicture"]; ok {
		s, isStr := v.(string)
		if !isStr {
			return nil, errors.New("profilePicture must be a string")
		}
		updates["profilePicture"] = normalizeWhitespace(s)
	}

	if len(updates) == 0 {
		return nil, ErrNoProfileFields
	}
	return updates, nil
}

// normalizeWhitespace collapses runs of whitespace to single spaces and
// trims the result.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func requireString(v any, field string, min, max int) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", field)
	}
	s = normalizeWhitespace(s)
	if len(s) < min || len(s) > max {
		return "", fmt.Errorf("%s must be %d-%d characters", field, min, max)
	}
	return s, nil
}

// stringList validates an array of strings, normalizing whitespace and
// de-duplicating case-insensitively while preserving first-seen casing.
func stringList(v any, field string, minLen, maxLen, maxItems int, required bool) ([]string, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an array", field)
	}
	if required && len(arr) == 0 {
		return nil, fmt.Errorf("%s must be a non-empty array", field)
	}
	if len(arr) > maxItems {
		return nil, fmt.Errorf("maximum %d %s allowed", maxItems, field)
	}
	out := make([]string, 0, len(arr))
	seen := make(map[string]bool)
	for _, el := range arr {
		s, isStr := el.(string)
		if !isStr {
			return nil, fmt.Errorf("each %s entry must be a string", field)
		}
		s = normalizeWhitespace(s)
		if len(s) < minLen || len(s) > maxLen {
			return nil, fmt.Errorf("invalid %s entry length: %q", field, s)
		}
		key := strings.ToLower(s)
		if !seen[key] {
			seen[key] = true
			out = append(out, s)
		}
	}
	return out, nil
}

func weekdayList(v any) ([]string, error) {
	arr, ok := v.([]any)
	if !ok || len(arr) == 0 {
		return nil, errors.New("restDays must be a non-empty array of weekdays")
	}
	out := make([]string, 0, len(arr))
	seen := make(map[string]bool)
	for _, el := range arr {
		s, isStr := el.(string)
		if !isStr {
			return nil, errors.New("each rest day must be a string")
		}
		wd, ok := canonicalWeekday(s)
		if !ok {
			return nil, fmt.Errorf("invalid weekday: %q", s)
		}
		if !seen[wd] {
			seen[wd] = true
			out = append(out, wd)
		}
	}
	return out, nil
}

func titleWord(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func canonicalWeekday(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, wd := range validWeekdays {
		if strings.EqualFold(wd, s) {
			return wd, true
		}
	}
	return "", false
}

func skillList(v any) ([]any, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, errors.New("skills must be an array")
	}
	if len(arr) > 20 {
		return nil, errors.New("maximum 20 skills allowed")
	}
	out := make([]any, 0, len(arr))
	seen := make(map[string]bool)
	for _, el := range arr {
		m, isMap := el.(map[string]any)
		if !isMap {
			return nil, errors.New("each skill must be an object with name and rating")
		}
		name := normalizeWhitespace(asString(m["name"]))
		if name == "" || len(name) > 50 {
			return nil, errors.New("skill name must be a non-empty string of at most 50 characters")
		}
		rating := titleWord(strings.TrimSpace(asString(m["rating"])))
		if !validSkillRatings[rating] {
			return nil, fmt.Errorf("invalid skill rating: %q", asString(m["rating"]))
		}
		key := strings.ToLower(name)
		if !seen[key] {
			seen[key] = true
			out = append(out, store.Doc{"name": name, "rating": rating})
		}
	}
	return out, nil
}
