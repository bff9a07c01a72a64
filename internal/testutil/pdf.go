// Package testutil builds small, valid fixtures for tests across packages.
package testutil

import (
	"bytes"
	"fmt"
	"strings"
)

// BuildPDF returns a minimal PDF 1.4 file with one page per entry in pages.
// Each page shows its text in Helvetica; an empty entry yields a page with
// no text operators, like a scanned page. Lines in a page are drawn with
// separate Tj operators. A non-empty title is written to the Info dictionary.
func BuildPDF(title string, pages ...string) []byte {
	var buf bytes.Buffer
	var offsets []int

	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 5+2*i)
	}

	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	obj(fmt.Sprintf("<< /Title (%s) /Producer (testutil) >>", escape(title)))

	for i, text := range pages {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
			"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 6+2*i))
		stream := contentStream(text)
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info 4 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xref)

	return buf.Bytes()
}

func contentStream(text string) string {
	if text == "" {
		return "q\nQ\n"
	}
	var sb strings.Builder
	sb.WriteString("BT\n/F1 12 Tf\n14 TL\n72 720 Td\n")
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			sb.WriteString("T*\n")
		}
		fmt.Fprintf(&sb, "(%s) Tj\n", escape(line))
	}
	sb.WriteString("ET\n")
	return sb.String()
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)
	return r.Replace(s)
}
