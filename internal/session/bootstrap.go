package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/nguyentantai21042004/call-companion/internal/metrics"
)

const (
	failurePrefix  = "Could not initialize video session: "
	invalidFormat  = "Invalid data format received from the server."
	unknownFailure = "An unknown error occurred while initializing the video session."

	maxBodyBytes = 1 << 20
)

// ErrInvalidFormat marks a successful response without a roomUrl string.
var ErrInvalidFormat = errors.New("invalid session data format")

// StatusError is returned for a non-2xx provisioning response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

func (b *implBootstrapper) Run(ctx context.Context) State {
	b.once.Do(func() {
		roomURL, err := b.fetch(ctx)

		var st State
		if err != nil {
			st = State{Status: Failed, Message: FailureMessage(err), Err: err}
			b.metrics.SessionBootstrap(metrics.OutcomeFailure)
			b.logger.Error(ctx, "Session bootstrap failed: %v", err)
		} else {
			st = State{Status: Ready, RoomURL: roomURL}
			b.metrics.SessionBootstrap(metrics.OutcomeSuccess)
			b.logger.Info(ctx, "Video room resolved: %s", roomURL)
		}

		b.mu.Lock()
		b.state = st
		b.mu.Unlock()
	})
	return b.State()
}

func (b *implBootstrapper) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *implBootstrapper) fetch(ctx context.Context) (string, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Code: resp.StatusCode}
	}

	var doc map[string]interface{}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&doc); err != nil {
		return "", fmt.Errorf("decode session data: %w", err)
	}

	roomURL, ok := doc["roomUrl"].(string)
	if !ok || roomURL == "" {
		return "", ErrInvalidFormat
	}
	return roomURL, nil
}

// FailureMessage renders a bootstrap error for the error screen.
func FailureMessage(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil || err.Error() == "":
		return unknownFailure
	case errors.As(err, &statusErr):
		return failurePrefix + fmt.Sprintf("Failed to fetch session data. Status: %d", statusErr.Code)
	case errors.Is(err, ErrInvalidFormat):
		return failurePrefix + invalidFormat
	default:
		return failurePrefix + err.Error()
	}
}
