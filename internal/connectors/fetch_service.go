package connectors

import (
	"hvdcmap/internal/codes"
	"hvdcmap/internal/storage"
)

// FetchService pulls messages through a connector, stores the raw
// bodies, and reports how many of them already carry a case code in the
// subject line — a cheap signal for how much of the batch the processor
// will keep.
type FetchService struct {
	db        *storage.DB
	connector MailConnector
	store     *MailStoreService
	engine    *codes.Engine
}

type FetchResult struct {
	Fetched   int
	Stored    int
	WithCodes int
}

func NewFetchService(db *storage.DB, rawMailDir string, connector MailConnector, engine *codes.Engine) *FetchService {
	return &FetchService{
		db:        db,
		connector: connector,
		store:     NewMailStoreService(db, rawMailDir),
		engine:    engine,
	}
}

func (s *FetchService) FetchAndStore(label string, max int) (FetchResult, error) {
	messages, err := s.connector.FetchInbox(label, max)
	if err != nil {
		return FetchResult{}, err
	}

	result := FetchResult{Fetched: len(messages)}
	for _, msg := range messages {
		if _, err := s.store.Store(msg); err != nil {
			return result, err
		}
		result.Stored++
		if len(s.engine.ExtractCaseCodes(msg.Subject)) > 0 {
			result.WithCodes++
		}
	}

	return result, nil
}
