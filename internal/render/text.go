package render

import (
	"bytes"
	"html"
)

// RenderText renders plain text as escaped, pre-formatted text.
func RenderText(source []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("<pre>")
	buf.WriteString(html.EscapeString(string(source)))
	buf.WriteString("</pre>")
	return buf.Bytes()
}
