package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"rallyledger/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// AttendanceClient is the HTTP client for the external attendance system.
// The ledger only consumes its verdicts; how check-in is determined is the
// attendance system's business.
type AttendanceClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAttendanceClient creates a new attendance client
func NewAttendanceClient(baseURL string) *AttendanceClient {
	return &AttendanceClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type attendanceResponse struct {
	Status string `json:"status"` // "checked_in", "absent" or "unknown"
}

type eventStatusResponse struct {
	Concluded bool `json:"concluded"`
}

// IsCheckedIn returns the attendance verdict for a (user, event) pair. An
// event that has not concluded, or a user with no record, reads as
// unknown.
func (c *AttendanceClient) IsCheckedIn(ctx context.Context, userID, eventID string) (interfaces.CheckInStatus, error) {
	endpoint := fmt.Sprintf("%s/v1/events/%s/attendance/%s",
		c.baseURL, url.PathEscape(eventID), url.PathEscape(userID))

	var resp attendanceResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return interfaces.CheckInUnknown, fmt.Errorf("attendance lookup for user %s event %s: %w", userID, eventID, err)
	}

	switch resp.Status {
	case "checked_in":
		return interfaces.CheckInConfirmed, nil
	case "absent":
		return interfaces.CheckInAbsent, nil
	default:
		return interfaces.CheckInUnknown, nil
	}
}

// HasEventConcluded reports whether an event has ended
func (c *AttendanceClient) HasEventConcluded(ctx context.Context, eventID string) (bool, error) {
	endpoint := fmt.Sprintf("%s/v1/events/%s", c.baseURL, url.PathEscape(eventID))

	var resp eventStatusResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return false, fmt.Errorf("event status lookup for event %s: %w", eventID, err)
	}

	return resp.Concluded, nil
}

func (c *AttendanceClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.WithFields(log.Fields{
			"endpoint": endpoint,
			"status":   resp.StatusCode,
		}).Warn("Attendance service returned non-OK status")
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
