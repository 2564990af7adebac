package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/openaccel/beamauth/internal/errors"
)

// LogbookClient submits an incident log entry and returns its ID.
type LogbookClient interface {
	Submit(ctx context.Context, author, subject, htmlBody string) (int64, error)
}

// HTTPLogbookClient submits entries to the electronic logbook's incoming
// endpoint.
type HTTPLogbookClient struct {
	hostname string
	logbooks []string
	client   *http.Client
	logger   *slog.Logger
}

// NewHTTPLogbookClient creates a new HTTPLogbookClient targeting the given
// logbook host. Entries are filed under the given logbooks.
func NewHTTPLogbookClient(hostname string, logbooks []string, logger *slog.Logger) *HTTPLogbookClient {
	return &HTTPLogbookClient{
		hostname: hostname,
		logbooks: logbooks,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}
}

// Submit files one HTML entry and returns the assigned log ID.
func (c *HTTPLogbookClient) Submit(
	ctx context.Context,
	author string,
	subject string,
	htmlBody string,
) (int64, error) {
	form := url.Values{}
	form.Set("title", subject)
	form.Set("body", htmlBody)
	form.Set("contentType", "text/html")
	form.Set("logbooks", strings.Join(c.logbooks, ","))
	form.Set("tags", "Readme")
	form.Set("author", author)

	submitURL := fmt.Sprintf("https://%s/incoming", c.hostname)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		submitURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to build logbook request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to submit logbook entry")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return 0, apperrors.New(fmt.Sprintf("logbook submission returned status %d", resp.StatusCode))
	}

	var result struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, apperrors.Wrap(err, "failed to decode logbook response")
	}

	c.logger.Info("logbook entry submitted", "id", result.ID, "subject", subject)

	return result.ID, nil
}
