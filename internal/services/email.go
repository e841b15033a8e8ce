package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/beatwatch/complaint-server/internal/models"
	"go.uber.org/zap"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// EmailService validates recipients and hands complaint digests to the
// external email relay. Delivery and identity verification live behind the
// relay; this side only supplies the payload.
type EmailService struct {
	client         *http.Client
	relayURL       string
	allowedDomains []string
	logger         *zap.SugaredLogger
}

// NewEmailService creates a new email service
func NewEmailService(relayURL string, allowedDomains []string, logger *zap.SugaredLogger) *EmailService {
	return &EmailService{
		client:         &http.Client{Timeout: 15 * time.Second},
		relayURL:       relayURL,
		allowedDomains: allowedDomains,
		logger:         logger,
	}
}

// ValidateRecipient checks address shape and, when an allow-list is
// configured, restricts recipients to department domains.
func (s *EmailService) ValidateRecipient(address string) error {
	if !emailPattern.MatchString(address) {
		return fmt.Errorf("invalid email address %q", address)
	}
	if len(s.allowedDomains) == 0 {
		return nil
	}

	domain := strings.ToLower(address[strings.LastIndex(address, "@")+1:])
	for _, allowed := range s.allowedDomains {
		if domain == strings.ToLower(allowed) {
			return nil
		}
	}
	return fmt.Errorf("recipient domain %q is not allowed", domain)
}

// Send posts the search result to the email relay for the given recipient.
func (s *EmailService) Send(ctx context.Context, result *models.SearchResult, sendTo string) error {
	if err := s.ValidateRecipient(sendTo); err != nil {
		return err
	}

	dispatch := models.EmailDispatch{
		SelectedComplaints: result.Complaints,
		SendTo:             sendTo,
		Filters:            result.Filters,
		DateRange:          result.Range,
	}

	payload, err := json.Marshal(dispatch)
	if err != nil {
		return fmt.Errorf("marshal email dispatch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.relayURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("invoke email relay: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("email relay returned %d", resp.StatusCode)
	}

	s.logger.Infow("Email dispatched",
		"sendTo", sendTo,
		"complaints", len(result.Complaints),
	)
	return nil
}
