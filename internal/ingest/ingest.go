// Package ingest turns uploaded documents into plain-text scripts.
//
// Ingestion is best effort: a document that cannot be decoded contributes an
// empty script and a Warning, and the rest of the batch is still processed.
package ingest

import (
	"fmt"
	"log/slog"
)

// Format tags how a document's bytes are laid out.
type Format string

const (
	FormatPlainText    Format = "plain-text"
	FormatRichDocument Format = "rich-document" // Office Open XML word processing (.docx)
	FormatPDF          Format = "pdf"
	FormatUnknown      Format = "unknown"
)

// SourceDocument is one uploaded file.
type SourceDocument struct {
	Name    string
	Format  Format
	Content []byte
}

// Warning records a document that was degraded during ingestion.
type Warning struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

func (w Warning) String() string {
	return fmt.Sprintf("document %d (%s): %s", w.Index+1, w.Name, w.Reason)
}

// Ingestor decodes batches of SourceDocuments.
type Ingestor struct {
	log *slog.Logger
}

// New returns an Ingestor that logs degraded documents to log.
func New(log *slog.Logger) *Ingestor {
	if log == nil {
		log = slog.Default()
	}
	return &Ingestor{log: log}
}

// Ingest decodes docs in order. The returned slice always has len(docs)
// entries, and entry i is the text of docs[i].
func (in *Ingestor) Ingest(docs []SourceDocument) ([]string, []Warning) {
	scripts := make([]string, len(docs))
	var warnings []Warning
	for i, doc := range docs {
		text, err := decode(doc)
		if err != nil {
			w := Warning{Index: i, Name: doc.Name, Reason: err.Error()}
			in.log.Warn("document degraded during ingestion",
				"index", i,
				"filename", doc.Name,
				"format", doc.Format,
				"err", err,
			)
			warnings = append(warnings, w)
		}
		scripts[i] = text
	}
	return scripts, warnings
}

// decode never fails for plain text; for other formats it returns "" with
// the reason on failure.
func decode(doc SourceDocument) (text string, err error) {
	defer func() {
		// Third-party parsers panic on some malformed input.
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("parser panic: %v", rec)
		}
	}()
	switch doc.Format {
	case FormatPlainText:
		return DecodeText(doc.Content), nil
	case FormatRichDocument:
		return ExtractDocx(doc.Content)
	case FormatPDF:
		return ExtractPDF(doc.Content)
	default:
		return "", fmt.Errorf("unsupported format %q", doc.Format)
	}
}
