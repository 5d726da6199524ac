// Package ingestion turns uploaded résumé and job-description files into plain text.
package ingestion

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"

	"github.com/jonathan/interview-coach/internal/types"
)

// Supported MIME types.
const (
	MimePDF      = "application/pdf"
	MimeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeHTML     = "text/html"
	MimePlain    = "text/plain"
	MimeMarkdown = "text/markdown"
)

// ErrNoText is returned when a supported document holds no extractable text.
var ErrNoText = errors.New("no text content found")

// ErrUnreadable wraps failures to parse a document of a supported type.
var ErrUnreadable = errors.New("document could not be read")

// ExtractText returns the cleaned text of a document. Unknown MIME types fail
// with *types.UnsupportedFormatError.
func ExtractText(data []byte, mimeType string) (string, error) {
	mediaType := normalizeMime(mimeType)

	var (
		text string
		err  error
	)
	switch mediaType {
	case MimePDF:
		text, err = extractPDF(data)
	case MimeDOCX:
		text, err = extractDOCX(data)
	case MimeHTML:
		text, err = extractHTML(data)
	case MimePlain, MimeMarkdown:
		text = strings.ToValidUTF8(string(data), "")
	default:
		return "", &types.UnsupportedFormatError{MimeType: mimeType}
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	text = CleanText(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

func normalizeMime(mimeType string) string {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mimeType))
	}
	return mediaType
}

// DetectMimeType guesses the type of a local file, first by extension and then by content.
func DetectMimeType(filename string, data []byte) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	case ".html", ".htm":
		return MimeHTML
	case ".txt":
		return MimePlain
	case ".md":
		return MimeMarkdown
	}
	return normalizeMime(http.DetectContentType(data))
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var sb strings.Builder
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Unreadable pages are skipped; the rest of the document still counts
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open document body: %w", err)
		}
		defer rc.Close()
		return documentText(rc)
	}
	return "", fmt.Errorf("failed to open DOCX: word/document.xml missing")
}

// documentText walks WordprocessingML, keeping text runs and turning
// paragraphs, breaks and tabs into whitespace.
func documentText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var sb strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document body: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}

func extractHTML(data []byte) (string, error) {
	if !utf8.Valid(data) {
		data = []byte(strings.ToValidUTF8(string(data), ""))
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find("script, style, noscript, nav, footer").Remove()

	var lines []string
	doc.Find("h1, h2, h3, h4, p, li, td, pre").Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered("p, li, td, pre").Length() > 0 {
			return
		}
		if text := strings.TrimSpace(s.Text()); text != "" {
			lines = append(lines, text)
		}
	})
	if len(lines) == 0 {
		return doc.Find("body").Text(), nil
	}
	return strings.Join(lines, "\n"), nil
}
