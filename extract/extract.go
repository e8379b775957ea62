// Package extract turns an uploaded contract file into plain text.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	"github.com/cloudwego/eino/components/document/parser"
	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file too large")
	ErrNoText          = errors.New("file contains no text")
)

// Document is an upload after extraction
type Document struct {
	FileName    string
	ContentType string
	Data        []byte
	Text        string
}

// Size returns the upload size in bytes
func (d *Document) Size() int64 {
	return int64(len(d.Data))
}

// Extractor reads uploads, sniffs their type and extracts text
type Extractor struct {
	maxBytes  int64
	pdfParser parser.Parser
}

// NewExtractor creates an extractor with the eino PDF parser
func NewExtractor(ctx context.Context, maxBytes int64) (*Extractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: false})
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF parser: %w", err)
	}
	return NewExtractorWithParser(maxBytes, p), nil
}

// NewExtractorWithParser creates an extractor with the given PDF parser
func NewExtractorWithParser(maxBytes int64, pdfParser parser.Parser) *Extractor {
	return &Extractor{maxBytes: maxBytes, pdfParser: pdfParser}
}

// MaxBytes returns the largest upload the extractor accepts
func (e *Extractor) MaxBytes() int64 {
	return e.maxBytes
}

// Extract reads at most maxBytes from r and returns the document text
func (e *Extractor) Extract(ctx context.Context, fileName string, r io.Reader) (*Document, error) {
	data, err := io.ReadAll(io.LimitReader(r, e.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > e.maxBytes {
		return nil, ErrTooLarge
	}

	mt := mimetype.Detect(data)
	doc := &Document{
		FileName:    fileName,
		ContentType: mt.String(),
		Data:        data,
	}

	switch {
	case mt.Is("application/pdf"):
		doc.Text, err = e.parsePDF(ctx, fileName, data)
		if err != nil {
			return nil, err
		}
	case isText(mt):
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("%w: text is not valid UTF-8", ErrUnsupportedType)
		}
		doc.Text = string(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
	}

	if strings.TrimSpace(doc.Text) == "" {
		return nil, ErrNoText
	}
	return doc, nil
}

func (e *Extractor) parsePDF(ctx context.Context, fileName string, data []byte) (string, error) {
	if e.pdfParser == nil {
		return "", fmt.Errorf("%w: PDF parsing not configured", ErrUnsupportedType)
	}

	docs, err := e.pdfParser.Parse(ctx, bytes.NewReader(data), parser.WithURI(fileName))
	if err != nil {
		return "", fmt.Errorf("parse pdf failed: %w", err)
	}

	pages := make([]string, 0, len(docs))
	for _, d := range docs {
		if content := strings.TrimSpace(d.Content); content != "" {
			pages = append(pages, content)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

// isText reports whether the type is text/plain or derives from it
func isText(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}
