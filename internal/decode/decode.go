// Package decode turns downloaded document bytes into plain text. Each
// decoder returns the text plus an error code string; codes are data on the
// extraction attempt, not fatal Go errors.
package decode

// Error codes reported by the decoders.
const (
	CodeFileMissing          = "file_missing"
	CodeDocxDocumentMissing  = "docx_document_missing"
	CodeDocxReadError        = "docx_read_error"
	CodeDocxParseError       = "docx_parse_error"
	CodeDocxEmpty            = "docx_empty"
	CodeDocBinaryUnsupported = "doc_binary_unsupported"
	CodeDocEmpty             = "doc_empty"
	CodeHTMLEmpty            = "html_empty"
	CodePDFParseError        = "pdf_parse_error"
	CodeTextEmpty            = "text_empty"
)

// NormalizeType folds a declared document type and filename extension into
// the canonical type names the selector scores. The extension wins when it
// is recognizably a document format.
func NormalizeType(declared, extension string) string {
	switch extension {
	case ".pdf":
		return "pdf"
	case ".docx":
		return "docx"
	case ".doc", ".wps":
		return "doc"
	case ".htm", ".html":
		return "html"
	case ".txt", ".text", ".md":
		return "text"
	}
	switch declared {
	case "docx":
		return "docx"
	case "doc", "word":
		return "doc"
	case "pdf", "html", "text":
		return declared
	}
	return declared
}
