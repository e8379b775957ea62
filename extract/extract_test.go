package extract

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePDFParser struct {
	pages []string
	err   error
	uri   string
}

func (f *fakePDFParser) Parse(ctx context.Context, reader io.Reader, opts ...parser.Option) ([]*schema.Document, error) {
	f.uri = parser.GetCommonOptions(&parser.Options{}, opts...).URI
	if f.err != nil {
		return nil, f.err
	}
	docs := make([]*schema.Document, 0, len(f.pages))
	for _, p := range f.pages {
		docs = append(docs, &schema.Document{Content: p})
	}
	return docs, nil
}

const pdfHeader = "%PDF-1.7\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n"

func TestExtract_PlainText(t *testing.T) {
	e := NewExtractorWithParser(1024, nil)
	text := "SERVICE AGREEMENT\nThis Agreement is entered into by Acme and Globex."

	doc, err := e.Extract(context.Background(), "service.txt", strings.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, text, doc.Text)
	assert.Equal(t, "service.txt", doc.FileName)
	assert.Equal(t, int64(len(text)), doc.Size())
	assert.True(t, strings.HasPrefix(doc.ContentType, "text/plain"))
}

func TestExtract_PDF(t *testing.T) {
	fake := &fakePDFParser{pages: []string{"Page one terms.", "  ", "Page two terms."}}
	e := NewExtractorWithParser(1024, fake)

	doc, err := e.Extract(context.Background(), "lease.pdf", strings.NewReader(pdfHeader))
	require.NoError(t, err)
	assert.Equal(t, "Page one terms.\n\nPage two terms.", doc.Text)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Equal(t, "lease.pdf", fake.uri)
}

func TestExtract_PDFParseError(t *testing.T) {
	e := NewExtractorWithParser(1024, &fakePDFParser{err: errors.New("corrupt xref")})

	_, err := e.Extract(context.Background(), "broken.pdf", strings.NewReader(pdfHeader))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt xref")
}

func TestExtract_TooLarge(t *testing.T) {
	e := NewExtractorWithParser(10, nil)

	_, err := e.Extract(context.Background(), "big.txt", strings.NewReader(strings.Repeat("a", 11)))
	assert.ErrorIs(t, err, ErrTooLarge)

	doc, err := e.Extract(context.Background(), "exact.txt", strings.NewReader(strings.Repeat("a", 10)))
	require.NoError(t, err)
	assert.Equal(t, int64(10), doc.Size())
}

func TestExtract_UnsupportedType(t *testing.T) {
	e := NewExtractorWithParser(1024, nil)
	png := "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"

	_, err := e.Extract(context.Background(), "scan.png", strings.NewReader(png))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = e.Extract(context.Background(), "lease.pdf", strings.NewReader(pdfHeader))
	assert.ErrorIs(t, err, ErrUnsupportedType, "PDF without a parser")
}

func TestExtract_NoText(t *testing.T) {
	e := NewExtractorWithParser(1024, &fakePDFParser{pages: []string{" "}})

	_, err := e.Extract(context.Background(), "blank.txt", strings.NewReader("   \n\t"))
	assert.ErrorIs(t, err, ErrNoText)

	_, err = e.Extract(context.Background(), "scanned.pdf", strings.NewReader(pdfHeader))
	assert.ErrorIs(t, err, ErrNoText)
}
