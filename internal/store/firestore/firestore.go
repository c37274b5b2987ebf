package firestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"habits/internal/core"
	"habits/internal/store"

	gfirestore "google.golang.org/api/firestore/v1"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
)

// Client stores activities as Firestore documents via the REST API.
type Client struct {
	svc        *gfirestore.Service
	parent     string
	collection string
}

var (
	_ store.ActivityWriter  = (*Client)(nil)
	_ store.ActivityLister  = (*Client)(nil)
	_ store.ActivityDeleter = (*Client)(nil)
)

// NewFromEnv creates a Firestore client using environment variables.
// Required: FIRESTORE_PROJECT_ID
// Optional: FIRESTORE_DATABASE (default "(default)"),
// FIRESTORE_COLLECTION (default "activities").
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	projectID := strings.TrimSpace(os.Getenv("FIRESTORE_PROJECT_ID"))
	if projectID == "" {
		return nil, errors.New("missing FIRESTORE_PROJECT_ID")
	}
	database := strings.TrimSpace(os.Getenv("FIRESTORE_DATABASE"))
	if database == "" {
		database = "(default)"
	}
	collection := strings.TrimSpace(os.Getenv("FIRESTORE_COLLECTION"))
	if collection == "" {
		collection = "activities"
	}

	svc, err := newFirestoreService(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore service: %w", err)
	}

	return &Client{
		svc:        svc,
		parent:     fmt.Sprintf("projects/%s/databases/%s/documents", projectID, database),
		collection: collection,
	}, nil
}

// newFirestoreService initializes the service using Service Account credentials.
func newFirestoreService(ctx context.Context) (*gfirestore.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Firestore service with Service Account",
		"credentials_size", len(credentialsJSON))

	svc, err := gfirestore.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gfirestore.DatastoreScope))
	if err != nil {
		return nil, fmt.Errorf("create firestore service: %w", err)
	}
	return svc, nil
}

func (c *Client) Create(ctx context.Context, a core.Activity) (core.Activity, error) {
	if err := a.Validate(); err != nil {
		return core.Activity{}, fmt.Errorf("%w: %w", store.ErrValidation, err)
	}
	if c.svc == nil {
		return core.Activity{}, errors.New("firestore service not initialized")
	}

	doc := &gfirestore.Document{Fields: activityToFields(a)}
	created, err := c.svc.Projects.Databases.Documents.
		CreateDocument(c.parent, c.collection, doc).
		Context(ctx).Do()
	if err != nil {
		return core.Activity{}, mapAPIError("create document", err)
	}

	a.ID = documentID(created.Name)
	slog.InfoContext(ctx, "Activity document created", "id", a.ID, "name", a.Name)
	return a, nil
}

// List pages through the whole collection. Documents with an unparsable
// payload are skipped with a warning rather than failing the listing.
func (c *Client) List(ctx context.Context) ([]core.Activity, error) {
	if c.svc == nil {
		return nil, errors.New("firestore service not initialized")
	}

	var out []core.Activity
	pageToken := ""
	for {
		call := c.svc.Projects.Databases.Documents.
			List(c.parent, c.collection).
			PageSize(300).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, mapAPIError("list documents", err)
		}
		for _, doc := range resp.Documents {
			a, err := docToActivity(doc)
			if err != nil {
				slog.WarnContext(ctx, "Skipping malformed activity document",
					"document", doc.Name, "error", err)
				continue
			}
			out = append(out, a)
		}
		if resp.NextPageToken == "" {
			return out, nil
		}
		pageToken = resp.NextPageToken
	}
}

func (c *Client) Delete(ctx context.Context, id string) error {
	if c.svc == nil {
		return errors.New("firestore service not initialized")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: empty id", store.ErrValidation)
	}

	name := fmt.Sprintf("%s/%s/%s", c.parent, c.collection, id)
	// Firestore deletes are idempotent, so require existence explicitly to
	// surface dangling IDs to callers.
	_, err := c.svc.Projects.Databases.Documents.
		Delete(name).CurrentDocumentExists(true).
		Context(ctx).Do()
	if err != nil {
		return mapAPIError("delete document", err)
	}
	slog.InfoContext(ctx, "Activity document deleted", "id", id)
	return nil
}

func mapAPIError(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound, http.StatusConflict:
			return fmt.Errorf("%s: %w", op, store.ErrNotFound)
		case http.StatusServiceUnavailable, http.StatusTooManyRequests,
			http.StatusInternalServerError, http.StatusBadGateway:
			return fmt.Errorf("%s: %w: %v", op, store.ErrUnavailable, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
