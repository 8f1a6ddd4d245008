package adapter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DocumentStore is the remote single-file store: one opaque blob per
// account, looked up by a well-known name. Every write replaces the
// document as a whole.
type DocumentStore interface {
	// Find looks up the document by name. An empty ID with a nil error
	// means the document does not exist yet.
	Find(ctx context.Context, name string) (string, error)

	// Create uploads a new document and returns its ID.
	Create(ctx context.Context, name string, data []byte) (string, error)

	// Update overwrites an existing document in place.
	Update(ctx context.Context, fileID string, data []byte) error

	// Read downloads the document content.
	Read(ctx context.Context, fileID string) ([]byte, error)
}

// driveStore implements DocumentStore against the Google Drive
// application data folder, which is invisible to the user's regular Drive.
type driveStore struct {
	service *drive.Service
}

// NewDrive creates a DocumentStore backed by Google Drive. The HTTP
// client must carry the bearer credential (an oauth2 token source);
// authorization failures surface as errors from the individual calls.
func NewDrive(ctx context.Context, client *http.Client) (DocumentStore, error) {
	service, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create drive service")
	}
	return &driveStore{service: service}, nil
}

func (s *driveStore) Find(ctx context.Context, name string) (string, error) {
	list, err := s.service.Files.List().
		Context(ctx).
		Spaces("appDataFolder").
		Q(fmt.Sprintf("name='%s'", name)).
		Fields("files(id)").
		Do()
	if err != nil {
		return "", goerr.Wrap(err, "failed to search drive", goerr.V("name", name))
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

func (s *driveStore) Create(ctx context.Context, name string, data []byte) (string, error) {
	meta := &drive.File{
		Name:     name,
		MimeType: "application/json",
		Parents:  []string{"appDataFolder"},
	}
	file, err := s.service.Files.Create(meta).
		Context(ctx).
		Media(bytes.NewReader(data)).
		Fields("id").
		Do()
	if err != nil {
		return "", goerr.Wrap(err, "failed to create drive file", goerr.V("name", name))
	}
	return file.Id, nil
}

func (s *driveStore) Update(ctx context.Context, fileID string, data []byte) error {
	_, err := s.service.Files.Update(fileID, &drive.File{}).
		Context(ctx).
		Media(bytes.NewReader(data)).
		Do()
	if err != nil {
		return goerr.Wrap(err, "failed to update drive file", goerr.V("file_id", fileID))
	}
	return nil
}

func (s *driveStore) Read(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := s.service.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download drive file", goerr.V("file_id", fileID))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read drive response", goerr.V("file_id", fileID))
	}
	return data, nil
}
