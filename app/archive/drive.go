package archive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	folderMimeType = "application/vnd.google-apps.folder"
	audioMimeType  = "audio/mpeg"
	shiurIDTagPrefix = "shiurID:"
)

// DriveSink archives to Google Drive. The archived-ID set is implicit: it is
// recomputed each run by listing the destination folder and parsing the
// shiurID tag out of each file's description.
type DriveSink struct {
	service *drive.Service
}

// NewDriveSink builds a sink over an already-authenticated HTTP client.
// Token refresh is the transport's concern.
func NewDriveSink(ctx context.Context, client *http.Client) (*DriveSink, error) {
	service, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return &DriveSink{service: service}, nil
}

func (s *DriveSink) ResolveDestination(ctx context.Context, base, feedName string, useSubfolders bool) (Destination, error) {
	baseID, err := s.findOrCreateFolder(ctx, base, "")
	if err != nil {
		return "", err
	}

	if !useSubfolders || feedName == "" {
		return Destination(baseID), nil
	}

	subID, err := s.findOrCreateFolder(ctx, SanitizeFilename(feedName), baseID)
	if err != nil {
		return "", err
	}
	return Destination(subID), nil
}

func (s *DriveSink) ListArchivedIDs(ctx context.Context, dest Destination) (map[string]bool, error) {
	ids := make(map[string]bool)
	query := fmt.Sprintf("'%s' in parents and trashed = false", string(dest))

	pageToken := ""
	for {
		call := s.service.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name, description)").
			PageSize(100).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		list, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list Drive folder: %w", err)
		}

		for _, file := range list.Files {
			if id := ParseShiurIDTag(file.Description); id != "" {
				ids[id] = true
			}
		}

		if list.NextPageToken == "" {
			break
		}
		pageToken = list.NextPageToken
	}

	return ids, nil
}

func (s *DriveSink) Store(ctx context.Context, data []byte, filename string, dest Destination, shiurID string) error {
	meta := &drive.File{
		Name:    filename,
		Parents: []string{string(dest)},
	}
	if shiurID != "" {
		meta.Description = ShiurIDTag(shiurID)
	}

	_, err := s.service.Files.Create(meta).
		Media(bytes.NewReader(data), googleapi.ContentType(audioMimeType)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return &StoreError{Filename: filename, Err: err}
	}

	slog.Debug("Uploaded to Drive", "filename", filename, "shiur_id", shiurID)
	return nil
}

// findOrCreateFolder resolves a folder by name under the given parent,
// creating it only when no match exists. Idempotent for repeated calls.
func (s *DriveSink) findOrCreateFolder(ctx context.Context, name, parentID string) (string, error) {
	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		escapeQueryValue(name), folderMimeType)
	if parentID != "" {
		query += fmt.Sprintf(" and '%s' in parents", parentID)
	}

	list, err := s.service.Files.List().
		Q(query).
		Fields("files(id, name)").
		PageSize(10).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to look up Drive folder %s: %w", name, err)
	}

	if len(list.Files) > 0 {
		return list.Files[0].Id, nil
	}

	meta := &drive.File{
		Name:     name,
		MimeType: folderMimeType,
	}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}

	created, err := s.service.Files.Create(meta).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create Drive folder %s: %w", name, err)
	}

	slog.Info("Created Drive folder", "name", name, "id", created.Id)
	return created.Id, nil
}

func escapeQueryValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// ShiurIDTag formats the description tag stored on uploaded files.
func ShiurIDTag(shiurID string) string {
	return shiurIDTagPrefix + shiurID
}

// ParseShiurIDTag recovers the shiur ID from a file description. Canonical
// writes have no whitespace after the colon, but readers tolerate it.
func ParseShiurIDTag(description string) string {
	description = strings.TrimSpace(description)
	if !strings.HasPrefix(description, shiurIDTagPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(description, shiurIDTagPrefix))
}
