// Package http provides the web server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request
// data: form extraction, input sanitization and request tracing IDs.
package http

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"habits/internal/core"
)

// activityDateLayout is the wire format used by the entry form's date input.
const activityDateLayout = "2006-01-02"

var (
	errMissingName     = errors.New("activity name is required")
	errMissingDate     = errors.New("date is required")
	errBadDate         = errors.New("date must be in YYYY-MM-DD format")
	errMissingDuration = errors.New("duration is required")
	errBadDuration     = errors.New("duration must be a whole number of minutes, at least 1")
)

// parseActivityForm builds an Activity from submitted form values.
// The returned activity has no ID; the backing store assigns one.
func parseActivityForm(form url.Values) (core.Activity, error) {
	name := sanitizeInput(form.Get("name"))
	if name == "" {
		return core.Activity{}, errMissingName
	}

	rawDate := strings.TrimSpace(form.Get("date"))
	if rawDate == "" {
		return core.Activity{}, errMissingDate
	}
	date, err := time.Parse(activityDateLayout, rawDate)
	if err != nil {
		return core.Activity{}, errBadDate
	}

	rawDuration := strings.TrimSpace(form.Get("duration"))
	if rawDuration == "" {
		return core.Activity{}, errMissingDuration
	}
	duration, err := strconv.Atoi(rawDuration)
	if err != nil || duration < 1 {
		return core.Activity{}, errBadDuration
	}

	return core.Activity{
		Name:     name,
		Date:     date,
		Duration: duration,
	}, nil
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
