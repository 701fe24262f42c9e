package segment

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

// RawPage is one page of extracted document text, before splitting.
type RawPage struct {
	Number     int    `json:"number"`
	TotalPages int    `json:"total_pages"`
	Content    string `json:"content"`
}

type docType string

const (
	typePDF docType = "PDF"
	typeCat docType = "DOCX" //anything lu4p/cat can read: docx, txt, rtf, odt
	typeErr docType = "ERROR"
)

func getDocType(docPath string) docType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return typePDF
	case ".docx", ".txt", ".rtf", ".odt":
		return typeCat
	default:
		return typeErr
	}
}

// ExtractPages pulls ordered page text out of a document. Pages whose text is
// empty or whitespace-only are dropped; that is a filter, not an error.
// A file that cannot be opened or parsed returns an error and the caller
// decides whether the batch continues.
func ExtractPages(path string) ([]RawPage, error) {
	switch getDocType(path) {
	case typePDF:
		return extractPDF(path)
	case typeCat:
		return extractCat(path)
	default:
		return nil, fmt.Errorf("unsupported document type: %s", filepath.Ext(path))
	}
}

func extractPDF(path string) ([]RawPage, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []RawPage
	numPages := f.NumPage()
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			logger.Error("Error parsing page content", "page", i, "error", err)
			continue
		}
		if strings.TrimSpace(content) == "" {
			continue
		}

		pages = append(pages, RawPage{
			Number:     i,
			TotalPages: numPages,
			Content:    content,
		})
	}
	return pages, nil
}

// extractCat reads a .odt, .docx, .rtf or plaintext file. The whole document
// lands on a single page since these formats carry no page markers we can use.
func extractCat(path string) ([]RawPage, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract document text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	return []RawPage{
		{
			Number:     1,
			TotalPages: 1,
			Content:    text,
		},
	}, nil
}

// protectExtract guards against pages that hang the pdf parser.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		return "", errors.New("page extraction timeout")
	}
}
