// Package extract turns uploaded resume documents into plain text.
//
// The dispatcher keys on the declared MIME type of the upload:
//
//	application/pdf  → PDF extractor (ledongthuc/pdf)
//	either Word MIME → Word extractor (nguyenthenguyen/docx)
//	anything else    → empty text, not an error
//
// Returning "" for unknown types mirrors how the rest of the system treats
// the resume text: absence is a valid state, never a failure. An extractor
// that cannot parse a document it should understand does return an error.
package extract

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// MIME types the dispatcher recognizes.
const (
	MimePDF     = "application/pdf"
	MimeWord    = "application/msword"
	MimeWordXML = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Text extracts plain text from a resume document.
//
// mimeType is the type declared by the upload, not sniffed from the bytes —
// the caller decides how much to trust it. Unrecognized types yield ("", nil).
func Text(mimeType string, data []byte) (string, error) {
	switch mimeType {
	case MimePDF:
		return pdfText(data)
	case MimeWord, MimeWordXML:
		return wordText(data)
	default:
		return "", nil
	}
}

// pdfText reads every page of a PDF and concatenates its text content.
func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("extract: opening pdf: %w", err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract: reading pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("extract: reading pdf text: %w", err)
	}

	return buf.String(), nil
}

// wordText extracts the text runs from a Word document.
//
// The docx library exposes the document body as raw WordprocessingML, so we
// flatten it ourselves: collect the character data of every <w:t> run and
// break lines at paragraph boundaries.
func wordText(data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("extract: opening word document: %w", err)
	}
	defer r.Close()

	return flattenWordXML(r.Editable().GetContent())
}

// flattenWordXML reduces WordprocessingML to plain text.
func flattenWordXML(content string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(content))

	var (
		b     strings.Builder
		inRun bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("extract: parsing word document body: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inRun = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRun = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inRun {
				b.Write(t)
			}
		}
	}

	return b.String(), nil
}
