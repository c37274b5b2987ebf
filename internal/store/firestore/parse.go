package firestore

import (
	"errors"
	"fmt"
	"path"
	"time"

	"habits/internal/core"

	gfirestore "google.golang.org/api/firestore/v1"
)

// Document field names used by the activities collection.
const (
	fieldName     = "name"
	fieldDate     = "date"
	fieldDuration = "duration"
)

func activityToFields(a core.Activity) map[string]gfirestore.Value {
	return map[string]gfirestore.Value{
		fieldName:     {StringValue: a.Name},
		fieldDate:     {StringValue: a.Date.Format(time.RFC3339)},
		fieldDuration: {IntegerValue: int64(a.Duration)},
	}
}

// docToActivity converts a Firestore document back into a domain activity.
// The document ID is the last path segment of the resource name.
func docToActivity(doc *gfirestore.Document) (core.Activity, error) {
	if doc == nil {
		return core.Activity{}, errors.New("nil document")
	}
	name, ok := doc.Fields[fieldName]
	if !ok || name.StringValue == "" {
		return core.Activity{}, fmt.Errorf("document %s: missing name field", doc.Name)
	}
	rawDate, ok := doc.Fields[fieldDate]
	if !ok {
		return core.Activity{}, fmt.Errorf("document %s: missing date field", doc.Name)
	}
	date, err := time.Parse(time.RFC3339, rawDate.StringValue)
	if err != nil {
		return core.Activity{}, fmt.Errorf("document %s: parse date: %w", doc.Name, err)
	}
	duration, ok := doc.Fields[fieldDuration]
	if !ok {
		return core.Activity{}, fmt.Errorf("document %s: missing duration field", doc.Name)
	}

	return core.Activity{
		ID:       documentID(doc.Name),
		Name:     name.StringValue,
		Date:     date,
		Duration: int(duration.IntegerValue),
	}, nil
}

func documentID(resourceName string) string {
	return path.Base(resourceName)
}
