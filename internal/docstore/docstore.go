// Package docstore is a small client over the Firestore REST API used by the
// settings and gallery stores.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/firestore/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

var ErrNotFound = errors.New("document not found")

var errStopScan = errors.New("stop scan")

// Fields holds document values. Supported types are string and time.Time.
type Fields map[string]any

// Document is a decoded Firestore document.
type Document struct {
	ID     string
	Fields map[string]Value
}

// Value mirrors the REST JSON shape of the value kinds this project writes.
type Value struct {
	StringValue    *string `json:"stringValue,omitempty"`
	TimestampValue string  `json:"timestampValue,omitempty"`
	IntegerValue   string  `json:"integerValue,omitempty"`
	DoubleValue    float64 `json:"doubleValue,omitempty"`
}

func (v Value) String() string {
	if v.StringValue != nil {
		return *v.StringValue
	}
	return ""
}

func (v Value) Time() time.Time {
	t, _ := time.Parse(time.RFC3339Nano, v.TimestampValue)
	return t
}

type Client struct {
	docs *firestore.ProjectsDatabasesDocumentsService
	root string
}

// CredentialsOption turns a service-account or authorized-user JSON blob into a client option.
func CredentialsOption(ctx context.Context, credentialsJSON string) (option.ClientOption, error) {
	creds, err := google.CredentialsFromJSON(ctx, []byte(credentialsJSON), firestore.DatastoreScope)
	if err != nil {
		return nil, fmt.Errorf("parse google credentials: %w", err)
	}
	return option.WithCredentials(creds), nil
}

func New(ctx context.Context, projectID, database string, opts ...option.ClientOption) (*Client, error) {
	if projectID == "" {
		return nil, errors.New("firestore project id is required")
	}
	if database == "" {
		database = "(default)"
	}
	svc, err := firestore.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore service: %w", err)
	}
	return &Client{
		docs: svc.Projects.Databases.Documents,
		root: fmt.Sprintf("projects/%s/databases/%s/documents", projectID, database),
	}, nil
}

func (c *Client) name(docPath string) string {
	return c.root + "/" + strings.Trim(docPath, "/")
}

// Get returns ErrNotFound when the document does not exist.
func (c *Client) Get(ctx context.Context, docPath string) (Document, error) {
	doc, err := c.docs.Get(c.name(docPath)).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("get %s: %w", docPath, err)
	}
	return decode(doc)
}

// Merge writes only the listed fields. A listed field missing from values (or
// holding an empty string) is removed from the document; unlisted fields are kept.
// The document is created when it does not exist.
func (c *Client) Merge(ctx context.Context, docPath string, values Fields, mask []string) error {
	doc, err := encode(values)
	if err != nil {
		return err
	}
	_, err = c.docs.Patch(c.name(docPath), doc).UpdateMaskFieldPaths(mask...).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("patch %s: %w", docPath, err)
	}
	return nil
}

func (c *Client) Create(ctx context.Context, collection, id string, values Fields) error {
	doc, err := encode(values)
	if err != nil {
		return err
	}
	call := c.docs.CreateDocument(c.root, collection, doc).Context(ctx)
	if id != "" {
		call = call.DocumentId(id)
	}
	if _, err := call.Do(); err != nil {
		return fmt.Errorf("create in %s: %w", collection, err)
	}
	return nil
}

// Scan walks a collection in orderBy order, pageSize documents per request,
// until fn returns false or the collection is exhausted.
func (c *Client) Scan(ctx context.Context, collection, orderBy string, pageSize int64, fn func(Document) bool) error {
	call := c.docs.List(c.root, collection)
	if orderBy != "" {
		call = call.OrderBy(orderBy)
	}
	if pageSize > 0 {
		call = call.PageSize(pageSize)
	}
	err := call.Pages(ctx, func(resp *firestore.ListDocumentsResponse) error {
		for _, d := range resp.Documents {
			doc, err := decode(d)
			if err != nil {
				return err
			}
			if !fn(doc) {
				return errStopScan
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopScan) {
		return fmt.Errorf("scan %s: %w", collection, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}

// encode goes through the REST JSON shape so the generated Value type is only
// touched via its wire format. Empty strings are left out.
func encode(values Fields) (*firestore.Document, error) {
	wire := make(map[string]Value, len(values))
	for k, v := range values {
		switch x := v.(type) {
		case string:
			if x == "" {
				continue
			}
			s := x
			wire[k] = Value{StringValue: &s}
		case time.Time:
			wire[k] = Value{TimestampValue: x.UTC().Format(time.RFC3339Nano)}
		default:
			return nil, fmt.Errorf("field %s: unsupported type %T", k, v)
		}
	}
	raw, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	doc := &firestore.Document{}
	if err := json.Unmarshal(raw, &doc.Fields); err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	return doc, nil
}

func decode(doc *firestore.Document) (Document, error) {
	out := Document{ID: path.Base(doc.Name), Fields: map[string]Value{}}
	if len(doc.Fields) == 0 {
		return out, nil
	}
	raw, err := json.Marshal(doc.Fields)
	if err != nil {
		return Document{}, fmt.Errorf("decode fields: %w", err)
	}
	if err := json.Unmarshal(raw, &out.Fields); err != nil {
		return Document{}, fmt.Errorf("decode fields: %w", err)
	}
	return out, nil
}
