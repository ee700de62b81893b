package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"hvdcmap/internal"
	"hvdcmap/internal/config"
)

type Connector struct {
	service      *gmail.Service
	keywords     []string
	lookbackDays int
}

func NewConnector(cfg config.Config) (*Connector, error) {
	if err := cfg.Require("GMAIL_CLIENT_ID", cfg.GmailClientID); err != nil {
		return nil, err
	}
	if err := cfg.Require("GMAIL_CLIENT_SECRET", cfg.GmailClientSecret); err != nil {
		return nil, err
	}
	if err := cfg.Require("GMAIL_REFRESH_TOKEN", cfg.GmailRefreshToken); err != nil {
		return nil, err
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GmailClientID,
		ClientSecret: cfg.GmailClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.GmailRedirectURI,
		Scopes:       []string{gmail.GmailReadonlyScope},
	}

	tokenSource := oauthCfg.TokenSource(context.Background(), &oauth2.Token{RefreshToken: cfg.GmailRefreshToken})
	svc, err := gmail.NewService(context.Background(), option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &Connector{service: svc, keywords: cfg.MailSearchKeywords, lookbackDays: cfg.MailLookbackDays}, nil
}

// FetchInbox lists messages under label that match the project search
// query and downloads each one in raw RFC 5322 form. Subject, sender
// and date come from the raw message itself, so a second metadata
// round-trip per message is not needed.
func (c *Connector) FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error) {
	listCall := c.service.Users.Messages.List("me").LabelIds(label).MaxResults(int64(max))
	if q := c.searchQuery(); q != "" {
		listCall = listCall.Q(q)
	}
	listResp, err := listCall.Do()
	if err != nil {
		return nil, err
	}

	out := make([]internal.FetchedMailMessage, 0, len(listResp.Messages))
	for _, msgRef := range listResp.Messages {
		if msgRef.Id == "" {
			continue
		}

		rawResp, err := c.service.Users.Messages.Get("me", msgRef.Id).Format("raw").Do()
		if err != nil {
			return nil, err
		}
		if rawResp.Raw == "" {
			continue
		}

		rawBytes, err := decodeBase64URL(rawResp.Raw)
		if err != nil {
			return nil, err
		}

		msg, err := messageFromRaw(msgRef.Id, rawBytes)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}

	return out, nil
}

// searchQuery narrows the listing to project traffic, e.g.
// "subject:(HVDC OR JPTW) newer_than:14d".
func (c *Connector) searchQuery() string {
	parts := []string{}
	if len(c.keywords) > 0 {
		parts = append(parts, "subject:("+strings.Join(c.keywords, " OR ")+")")
	}
	if c.lookbackDays > 0 {
		parts = append(parts, fmt.Sprintf("newer_than:%dd", c.lookbackDays))
	}
	return strings.Join(parts, " ")
}

func messageFromRaw(gmailID string, raw []byte) (internal.FetchedMailMessage, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return internal.FetchedMailMessage{}, fmt.Errorf("parse gmail message %s: %w", gmailID, err)
	}

	messageID := strings.TrimSpace(env.GetHeader("Message-ID"))
	if messageID == "" {
		messageID = gmailID
	}

	received := time.Now().UTC().Format(time.RFC3339)
	if dateHeader := env.GetHeader("Date"); dateHeader != "" {
		if t, err := mail.ParseDate(dateHeader); err == nil {
			received = t.UTC().Format(time.RFC3339)
		} else if t, err := mailDateFallback(dateHeader); err == nil {
			received = t.UTC().Format(time.RFC3339)
		}
	}

	return internal.FetchedMailMessage{
		Provider:   "gmail",
		MessageID:  messageID,
		Subject:    env.GetHeader("Subject"),
		From:       env.GetHeader("From"),
		ReceivedAt: received,
		Raw:        raw,
	}, nil
}

func decodeBase64URL(input string) ([]byte, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(input)
	if err == nil {
		return decoded, nil
	}
	decoded, err = base64.URLEncoding.DecodeString(input)
	if err == nil {
		return decoded, nil
	}
	return nil, fmt.Errorf("decode gmail raw payload: %w", err)
}

func mailDateFallback(value string) (time.Time, error) {
	layouts := []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822, time.RFC850, time.ANSIC}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format")
}
