package editor

import (
	"strings"
)

// Split cuts data into consecutive slices of at most size bytes. Empty data
// yields no chunks. The slices alias data.
func Split(data []byte, size int) [][]byte {
	if size <= 0 || len(data) == 0 {
		return nil
	}
	out := make([][]byte, 0, (len(data)+size-1)/size)
	for off := 0; off < len(data); off += size {
		end := min(off+size, len(data))
		out = append(out, data[off:end])
	}
	return out
}

// ComposePage inlines css and js into html for the public page. The style
// block goes before </head> and the script before </body>; either is
// appended when the closing tag is missing.
func ComposePage(html, css, js string) []byte {
	page := html
	if css != "" {
		page = insertBefore(page, "</head>", "<style>\n"+css+"\n</style>\n")
	}
	if js != "" {
		page = insertBefore(page, "</body>", "<script>\n"+js+"\n</script>\n")
	}
	return []byte(page)
}

func insertBefore(doc, closing, fragment string) string {
	i := strings.LastIndex(doc, closing)
	if i < 0 {
		i = strings.LastIndex(doc, strings.ToUpper(closing))
	}
	if i < 0 {
		return doc + fragment
	}
	return doc[:i] + fragment + doc[i:]
}
