package source

import (
	"context"
	"encoding/json"
	"fmt"

	"pricing-service/internal/pricing"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DocumentGetter loads the raw fields of one Firestore document
type DocumentGetter interface {
	GetDocument(ctx context.Context, path string) (map[string]interface{}, error)
}

// FirestoreSource reads the pricing document the admin console edits
type FirestoreSource struct {
	docs DocumentGetter
	path string
}

func NewFirestoreSource(docs DocumentGetter, path string) *FirestoreSource {
	return &FirestoreSource{docs: docs, path: path}
}

func (f *FirestoreSource) Name() string {
	return "firestore"
}

func (f *FirestoreSource) Fetch(ctx context.Context) (*pricing.PricingConfig, error) {
	data, err := f.docs.GetDocument(ctx, f.path)
	if err != nil {
		return nil, err
	}
	return decodeDocument(data)
}

// decodeDocument maps Firestore fields onto PricingConfig through the JSON
// field names, so the document keeps the website's camelCase layout
func decodeDocument(data map[string]interface{}) (*pricing.PricingConfig, error) {
	if data == nil {
		return nil, ErrNotFound
	}
	// admin console nests the document under "prices"
	if nested, ok := data["prices"].(map[string]interface{}); ok {
		data = nested
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pricing document: %w", err)
	}

	var cfg pricing.PricingConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode pricing document: %w", err)
	}

	return validated(&cfg)
}

// FirestoreDocuments is the production DocumentGetter backed by the Firebase Admin SDK
type FirestoreDocuments struct {
	client *firestore.Client
}

// NewFirestoreDocuments creates a Firestore client. If credentialsFile is empty,
// application-default credentials are used.
func NewFirestoreDocuments(ctx context.Context, projectID, credentialsFile string) (*FirestoreDocuments, error) {
	opts := []option.ClientOption{}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase app.Firestore: %w", err)
	}
	return &FirestoreDocuments{client: client}, nil
}

func (d *FirestoreDocuments) GetDocument(ctx context.Context, path string) (map[string]interface{}, error) {
	ref := d.client.Doc(path)
	if ref == nil {
		return nil, fmt.Errorf("invalid firestore document path %q", path)
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to get pricing document: %w", err)
	}
	return snap.Data(), nil
}

// Close releases the underlying client
func (d *FirestoreDocuments) Close() error {
	return d.client.Close()
}
