// Package policy models regulator policy entries as recorded by the crawler
// state file: one entry per announcement, each with attachment documents
// that may or may not have been downloaded locally.
package policy

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Document is one attachment recorded for an entry. Type is the crawler's
// declared format and may disagree with the bytes on disk.
type Document struct {
	URL        string `json:"url,omitempty"`
	Type       string `json:"type,omitempty"`
	Title      string `json:"title,omitempty"`
	LocalPath  string `json:"local_path,omitempty"`
	Preferred  bool   `json:"preferred,omitempty"`
	Downloaded bool   `json:"downloaded,omitempty"`
}

// UnmarshalJSON accepts the camelCase aliases older crawler runs wrote.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw struct {
		URL        string `json:"url"`
		Type       string `json:"type"`
		Title      string `json:"title"`
		LocalPath  string `json:"local_path"`
		LocalPath2 string `json:"localPath"`
		Path       string `json:"path"`
		Preferred  bool   `json:"preferred"`
		Downloaded bool   `json:"downloaded"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.URL = raw.URL
	d.Type = raw.Type
	d.Title = raw.Title
	d.LocalPath = firstNonEmpty(raw.LocalPath, raw.LocalPath2, raw.Path)
	d.Preferred = raw.Preferred
	d.Downloaded = raw.Downloaded
	return nil
}

// Entry is one policy announcement. Serial is the crawler's running number
// and is absent for entries imported from older state files.
type Entry struct {
	ID        string     `json:"entry_id,omitempty"`
	Serial    *int       `json:"serial,omitempty"`
	Title     string     `json:"title"`
	Remark    string     `json:"remark,omitempty"`
	Documents []Document `json:"documents,omitempty"`
}

// UnmarshalJSON folds the identifier aliases written by different crawler
// versions (entry_id, entryId, id, document_id, documentId) into ID.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		EntryID    string          `json:"entry_id"`
		EntryID2   string          `json:"entryId"`
		ID         string          `json:"id"`
		DocumentID string          `json:"document_id"`
		DocID      string          `json:"documentId"`
		Serial     *int            `json:"serial"`
		Title      string          `json:"title"`
		Remark     string          `json:"remark"`
		Documents  []Document      `json:"documents"`
		Entry      json.RawMessage `json:"entry"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	// Summary rows wrap the entry one level down.
	if len(raw.Entry) > 0 && raw.Title == "" {
		return json.Unmarshal(raw.Entry, e)
	}
	e.ID = firstNonEmpty(raw.EntryID, raw.EntryID2, raw.ID, raw.DocumentID, raw.DocID)
	e.Serial = raw.Serial
	e.Title = strings.TrimSpace(raw.Title)
	e.Remark = strings.TrimSpace(raw.Remark)
	e.Documents = raw.Documents
	return nil
}

// Identifier returns the stable handle used in filters and log lines.
func (e *Entry) Identifier(index int) string {
	if e.ID != "" {
		return e.ID
	}
	if e.Serial != nil {
		return fmt.Sprintf("serial:%d", *e.Serial)
	}
	return fmt.Sprintf("index:%d", index)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
