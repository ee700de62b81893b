// Package connectors acquires project mail. A MailConnector talks to
// one mailbox provider; the fetch and store services around it are
// provider-agnostic and hand raw messages to the processing pipeline.
package connectors

import "hvdcmap/internal"

// MailConnector fetches up to max messages from the named mailbox or
// label. Implementations apply the configured project-keyword and
// lookback filters server-side where the provider supports it.
type MailConnector interface {
	FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error)
}
