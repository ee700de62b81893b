package internal

// CodeKind identifies which extraction rule produced a canonical code.
type CodeKind string

const (
	KindHVDCAdopt    CodeKind = "HVDC_ADOPT"
	KindHVDCGeneric  CodeKind = "HVDC_GENERIC"
	KindParenDerived CodeKind = "PAREN_DERIVED"
	KindJPTWGRMTag   CodeKind = "JPTW_GRM_TAGGED"
	KindJPTWGRMPair  CodeKind = "JPTW_GRM_PAIR"
	KindTrailing     CodeKind = "TRAILING"
	KindPRL          CodeKind = "PRL"
)

// HitSource tells which part of a message or archive a code came from.
type HitSource string

const (
	SourceSubject    HitSource = "subject"
	SourceBodyText   HitSource = "body_text"
	SourceBodyHTML   HitSource = "body_html"
	SourceAttachment HitSource = "attachment"
	SourceFolderName HitSource = "folder_name"
)

// CodeHit is one canonical code found in one source location.
type CodeHit struct {
	Source HitSource
	Kind   CodeKind
	Code   string
	Meta   map[string]any
}

type CrossRefStatus string

type CrossRefReason string

const (
	CrossRefOK       CrossRefStatus = "OK"
	CrossRefReview   CrossRefStatus = "REVIEW"
	CrossRefNotFound CrossRefStatus = "NOT_FOUND"

	ReasonCode  CrossRefReason = "CODE"
	ReasonFuzzy CrossRefReason = "FUZZY"
	ReasonNone  CrossRefReason = "NONE"
)

// CargoRecord mirrors one row of the logistics tracking system.
type CargoRecord struct {
	ID        int
	Case      string
	Status    string
	Vendor    *string
	Site      *string
	ETA       *string
	ATA       *string
	UpdatedAt *string
	RawJSON   string
}

type CrossRefCandidate struct {
	ID     int     `json:"id"`
	Case   string  `json:"case"`
	Status string  `json:"status"`
	Score  float64 `json:"score"`
}

type CrossRefResult struct {
	Status     CrossRefStatus      `json:"status"`
	Confidence float64             `json:"confidence"`
	Reason     CrossRefReason      `json:"reason"`
	Record     *CargoRecord        `json:"record"`
	Candidates []CrossRefCandidate `json:"candidates"`
}

type EmailRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

// FolderRecord is one scanned archive folder with everything parsed
// out of its title.
type FolderRecord struct {
	Path      string
	Name      string
	Codes     []string
	Sites     []string
	POs       []string
	Phases    []string
	Vendors   []string
	FileCount int
}

type CodeExportRow struct {
	EmailID        int
	Subject        string
	Sender         string
	ReceivedAt     string
	Source         string
	Kind           string
	Code           string
	Vendor         *string
	Site           *string
	CrossRefStatus string
	Confidence     float64
	CrossRefReason string
	CargoCase      *string
	CargoStatus    *string
	CargoETA       *string
	CargoATA       *string
}
