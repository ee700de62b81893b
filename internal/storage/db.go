package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"hvdcmap/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS emails (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId)
);

CREATE TABLE IF NOT EXISTS code_hits (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  emailId INTEGER NOT NULL,
  source TEXT NOT NULL,
  kind TEXT NOT NULL,
  code TEXT NOT NULL,
  vendor TEXT,
  site TEXT,
  metaJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(emailId, source, code),
  FOREIGN KEY(emailId) REFERENCES emails(id)
);
CREATE INDEX IF NOT EXISTS idx_code_hits_code ON code_hits(code);

CREATE TABLE IF NOT EXISTS crossrefs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  codeHitId INTEGER NOT NULL UNIQUE,
  status TEXT NOT NULL,
  confidence REAL NOT NULL,
  reason TEXT NOT NULL,
  cargoId INTEGER,
  candidatesJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(codeHitId) REFERENCES code_hits(id)
);

CREATE TABLE IF NOT EXISTS cargo_records (
  id INTEGER PRIMARY KEY,
  caseCode TEXT NOT NULL,
  status TEXT NOT NULL,
  vendor TEXT,
  site TEXT,
  eta TEXT,
  ata TEXT,
  updatedAt TEXT,
  raw_json TEXT NOT NULL,
  lastSeenAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_cargo_case ON cargo_records(caseCode);

CREATE TABLE IF NOT EXISTS folders (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  path TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  codesJson TEXT NOT NULL,
  sitesJson TEXT NOT NULL,
  posJson TEXT NOT NULL,
  phasesJson TEXT NOT NULL,
  vendorsJson TEXT NOT NULL DEFAULT '[]',
  fileCount INTEGER NOT NULL DEFAULT 0,
  scannedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  emailId INTEGER,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(emailId) REFERENCES emails(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertEmail(provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.EmailRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO emails (provider, messageId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, messageID, subject, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.EmailRow{}, err
	}

	row, err := d.GetEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.EmailRow{}, err
	}
	if row == nil {
		return internal.EmailRow{}, errors.New("failed to upsert email")
	}
	return *row, nil
}

func (d *DB) GetEmailByProviderMessageID(provider, messageID string) (*internal.EmailRow, error) {
	var row internal.EmailRow
	err := d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM emails WHERE provider = ? AND messageId = ?
`, provider, messageID).Scan(
		&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) MustEmailByProviderMessageID(provider, messageID string) (internal.EmailRow, error) {
	row, err := d.GetEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.EmailRow{}, err
	}
	if row == nil {
		return internal.EmailRow{}, fmt.Errorf("email not found: provider=%s messageId=%s", provider, messageID)
	}
	return *row, nil
}

func (d *DB) ListEmailsByStatus(status string, limit int) ([]internal.EmailRow, error) {
	rows, err := d.conn.Query(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM emails WHERE status = ? ORDER BY receivedAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.EmailRow
	for rows.Next() {
		var row internal.EmailRow
		if err := rows.Scan(&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateEmailStatus(emailID int, status string) error {
	_, err := d.conn.Exec(`UPDATE emails SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, emailID)
	return err
}

// ClearEmailProcessing removes previous code hits and cross-refs so an
// email can be re-processed from scratch.
func (d *DB) ClearEmailProcessing(emailID int) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM crossrefs WHERE codeHitId IN (SELECT id FROM code_hits WHERE emailId = ?)`, emailID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM code_hits WHERE emailId = ?`, emailID); err != nil {
		return err
	}

	return tx.Commit()
}

func (d *DB) InsertCodeHit(emailID int, hit internal.CodeHit, vendor, site *string) (int64, error) {
	metaJSON, _ := json.Marshal(hit.Meta)
	result, err := d.conn.Exec(`
INSERT INTO code_hits (emailId, source, kind, code, vendor, site, metaJson)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(emailId, source, code) DO UPDATE SET kind=excluded.kind, vendor=excluded.vendor, site=excluded.site, metaJson=excluded.metaJson
`, emailID, string(hit.Source), string(hit.Kind), hit.Code, vendor, site, string(metaJSON))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (d *DB) InsertCrossRef(codeHitID int64, result internal.CrossRefResult) error {
	candidatesJSON, _ := json.Marshal(result.Candidates)
	var cargoID *int
	if result.Record != nil {
		id := result.Record.ID
		cargoID = &id
	}

	_, err := d.conn.Exec(`
INSERT INTO crossrefs (codeHitId, status, confidence, reason, cargoId, candidatesJson)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(codeHitId) DO UPDATE SET
  status=excluded.status,
  confidence=excluded.confidence,
  reason=excluded.reason,
  cargoId=excluded.cargoId,
  candidatesJson=excluded.candidatesJson
`, codeHitID, string(result.Status), result.Confidence, string(result.Reason), cargoID, string(candidatesJSON))
	return err
}

func (d *DB) UpsertCargoRecords(records []internal.CargoRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO cargo_records (id, caseCode, status, vendor, site, eta, ata, updatedAt, raw_json, lastSeenAt)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET
  caseCode=excluded.caseCode,
  status=excluded.status,
  vendor=excluded.vendor,
  site=excluded.site,
  eta=excluded.eta,
  ata=excluded.ata,
  updatedAt=excluded.updatedAt,
  raw_json=excluded.raw_json,
  lastSeenAt=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(r.ID, r.Case, r.Status, r.Vendor, r.Site, r.ETA, r.ATA, r.UpdatedAt, r.RawJSON); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListCargoRecords() ([]internal.CargoRecord, error) {
	rows, err := d.conn.Query(`
SELECT id, caseCode, status, vendor, site, eta, ata, updatedAt, raw_json
FROM cargo_records`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.CargoRecord
	for rows.Next() {
		var r internal.CargoRecord
		if err := rows.Scan(&r.ID, &r.Case, &r.Status, &r.Vendor, &r.Site, &r.ETA, &r.ATA, &r.UpdatedAt, &r.RawJSON); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) UpsertFolder(rec internal.FolderRecord) error {
	codesJSON, _ := json.Marshal(rec.Codes)
	sitesJSON, _ := json.Marshal(rec.Sites)
	posJSON, _ := json.Marshal(rec.POs)
	phasesJSON, _ := json.Marshal(rec.Phases)
	vendorsJSON, _ := json.Marshal(rec.Vendors)
	_, err := d.conn.Exec(`
INSERT INTO folders (path, name, codesJson, sitesJson, posJson, phasesJson, vendorsJson, fileCount)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(path) DO UPDATE SET
  name=excluded.name,
  codesJson=excluded.codesJson,
  sitesJson=excluded.sitesJson,
  posJson=excluded.posJson,
  phasesJson=excluded.phasesJson,
  vendorsJson=excluded.vendorsJson,
  fileCount=excluded.fileCount,
  scannedAt=CURRENT_TIMESTAMP
`, rec.Path, rec.Name, string(codesJSON), string(sitesJSON), string(posJSON), string(phasesJSON), string(vendorsJSON), rec.FileCount)
	return err
}

func (d *DB) ListFolders() ([]internal.FolderRecord, error) {
	rows, err := d.conn.Query(`SELECT path, name, codesJson, sitesJson, posJson, phasesJson, vendorsJson, fileCount FROM folders ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.FolderRecord
	for rows.Next() {
		var rec internal.FolderRecord
		var codesJSON, sitesJSON, posJSON, phasesJSON, vendorsJSON string
		if err := rows.Scan(&rec.Path, &rec.Name, &codesJSON, &sitesJSON, &posJSON, &phasesJSON, &vendorsJSON, &rec.FileCount); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(codesJSON), &rec.Codes)
		_ = json.Unmarshal([]byte(sitesJSON), &rec.Sites)
		_ = json.Unmarshal([]byte(posJSON), &rec.POs)
		_ = json.Unmarshal([]byte(phasesJSON), &rec.Phases)
		_ = json.Unmarshal([]byte(vendorsJSON), &rec.Vendors)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (d *DB) InsertRun(traceID string, emailID int, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, emailId, timingsJson, countsJson) VALUES (?, ?, ?, ?)`, traceID, emailID, string(timingsJSON), string(countsJSON))
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (d *DB) GetExportRows(emailID int) ([]internal.CodeExportRow, error) {
	rows, err := d.conn.Query(`
SELECT
  e.id,
  e.subject,
  e.sender,
  e.receivedAt,
  h.source,
  h.kind,
  h.code,
  h.vendor,
  h.site,
  x.status,
  x.confidence,
  x.reason,
  c.caseCode,
  c.status,
  c.eta,
  c.ata
FROM code_hits h
JOIN emails e ON e.id = h.emailId
LEFT JOIN crossrefs x ON x.codeHitId = h.id
LEFT JOIN cargo_records c ON c.id = x.cargoId
WHERE h.emailId = ?
ORDER BY h.id ASC
`, emailID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.CodeExportRow
	for rows.Next() {
		var row internal.CodeExportRow
		var status, reason *string
		var confidence *float64
		if err := rows.Scan(
			&row.EmailID, &row.Subject, &row.Sender, &row.ReceivedAt,
			&row.Source, &row.Kind, &row.Code, &row.Vendor, &row.Site,
			&status, &confidence, &reason,
			&row.CargoCase, &row.CargoStatus, &row.CargoETA, &row.CargoATA,
		); err != nil {
			return nil, err
		}
		if status != nil {
			row.CrossRefStatus = *status
		}
		if confidence != nil {
			row.Confidence = *confidence
		}
		if reason != nil {
			row.CrossRefReason = *reason
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
