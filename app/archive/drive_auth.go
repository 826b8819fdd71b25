package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
)

// NewDriveClient builds an authenticated HTTP client from an OAuth client
// credentials file and a previously saved token file. The oauth2 transport
// refreshes the access token transparently; the interactive consent flow
// that produces the token file happens out of band.
func NewDriveClient(ctx context.Context, credentialsPath, tokenPath string) (*http.Client, error) {
	credentials, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read Drive credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(credentials, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Drive credentials: %w", err)
	}

	tokenData, err := os.ReadFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read Drive token file (run the authorization flow first): %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("failed to parse Drive token file: %w", err)
	}

	return config.Client(ctx, &token), nil
}
