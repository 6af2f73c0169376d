package ingest

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// DetectFormat picks a Format from the file extension, falling back to
// sniffing the content when the extension is missing or unfamiliar.
func DetectFormat(filename string, content []byte) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".text", ".md", ".fountain":
		return FormatPlainText
	case ".docx":
		return FormatRichDocument
	case ".pdf":
		return FormatPDF
	}

	mtype := mimetype.Detect(content)
	switch {
	case mtype.Is(docxMIME):
		return FormatRichDocument
	case mtype.Is("application/pdf"):
		return FormatPDF
	}
	for m := mtype; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "text/") {
			return FormatPlainText
		}
	}
	return FormatUnknown
}

// ParseFormat maps a declared tag to a Format. Unrecognized tags map to
// FormatUnknown so ingestion can report them per document.
func ParseFormat(tag string) Format {
	switch Format(strings.ToLower(strings.TrimSpace(tag))) {
	case FormatPlainText:
		return FormatPlainText
	case FormatRichDocument:
		return FormatRichDocument
	case FormatPDF:
		return FormatPDF
	default:
		return FormatUnknown
	}
}
