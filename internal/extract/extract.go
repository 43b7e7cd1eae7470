// Package extract turns uploaded resume files into plain text.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/gen2brain/go-fitz"
)

// ErrUnsupportedFormat is returned for anything that is not pdf, doc or docx.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrNoText means the document opened fine but contained no extractable text.
var ErrNoText = errors.New("no text extracted")

const (
	TypePDF  = "pdf"
	TypeDOC  = "doc"
	TypeDOCX = "docx"
)

// FileType returns the normalised extension of name, e.g. "pdf".
func FileType(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// Supported reports whether fileType can be extracted.
func Supported(fileType string) bool {
	switch fileType {
	case TypePDF, TypeDOC, TypeDOCX:
		return true
	}
	return false
}

// Text reads r fully and dispatches on fileType.
func Text(r io.Reader, fileType string) (string, error) {
	if !Supported(fileType) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, fileType)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}

	var text string
	switch fileType {
	case TypePDF:
		text, err = PDF(data)
	case TypeDOCX:
		text, err = DOCX(data)
	case TypeDOC:
		text, err = DOC(data)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// PDF extracts the text layer of every page.
func PDF(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	for n := 0; n < doc.NumPage(); n++ {
		page, err := doc.Text(n)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", n+1, err)
		}
		sb.WriteString(strings.TrimSpace(page))
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

// DOCX reads word/document.xml and keeps paragraph breaks.
func DOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: %w", err)
	}

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return "", fmt.Errorf("failed to open DOCX: word/document.xml missing")
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX body: %w", err)
	}
	defer rc.Close()

	var sb strings.Builder
	dec := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse DOCX body: %w", err)
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

// minRun is the shortest printable run kept from a legacy .doc stream.
const minRun = 4

// DOC recovers text from a legacy Word binary by scanning for printable runs
// in both 8-bit and UTF-16LE encodings and keeping whichever yields more.
func DOC(data []byte) (string, error) {
	ascii := strings.Join(asciiRuns(data), "\n")
	wide := strings.Join(utf16Runs(data), "\n")
	if len(wide) > len(ascii) {
		return wide, nil
	}
	return ascii, nil
}

func keepRun(run []rune) bool {
	if len(run) < minRun {
		return false
	}
	for _, r := range run {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func printable(r rune) bool {
	return r == '\t' || (unicode.IsPrint(r) && r < unicode.MaxLatin1+1)
}

func asciiRuns(data []byte) []string {
	var runs []string
	var cur []rune
	flush := func() {
		if keepRun(cur) {
			runs = append(runs, strings.TrimSpace(string(cur)))
		}
		cur = cur[:0]
	}
	for _, b := range data {
		r := rune(b)
		if b < 0x80 && printable(r) {
			cur = append(cur, r)
			continue
		}
		flush()
	}
	flush()
	return runs
}

func utf16Runs(data []byte) []string {
	var runs []string
	var cur []uint16
	flush := func() {
		decoded := utf16.Decode(cur)
		if keepRun(decoded) {
			runs = append(runs, strings.TrimSpace(string(decoded)))
		}
		cur = cur[:0]
	}
	for i := 0; i+1 < len(data); i += 2 {
		u := uint16(data[i]) | uint16(data[i+1])<<8
		if printable(rune(u)) {
			cur = append(cur, u)
			continue
		}
		flush()
	}
	flush()
	return runs
}
