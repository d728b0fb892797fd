package editor

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		data string
		size int
		want []string
	}{
		{"empty", "", 4, nil},
		{"single", "abc", 4, []string{"abc"}},
		{"exact", "abcd", 4, []string{"abcd"}},
		{"multi", "hello world", 4, []string{"hell", "o wo", "rld"}},
		{"bad size", "abc", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Split([]byte(tt.data), tt.size)
			var got []string
			for _, c := range chunks {
				got = append(got, string(c))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplit_JoinRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789"), 1000)
	chunks := Split(data, 333)
	assert.Len(t, chunks, 31)
	assert.Equal(t, data, bytes.Join(chunks, nil))
}

func TestComposePage(t *testing.T) {
	html := "<html><head><title>x</title></head><body><h1>hi</h1></body></html>"

	page := string(ComposePage(html, "h1{color:red}", "console.log(1)"))
	assert.Equal(t,
		"<html><head><title>x</title><style>\nh1{color:red}\n</style>\n</head><body><h1>hi</h1><script>\nconsole.log(1)\n</script>\n</body></html>",
		page)

	assert.Equal(t, html, string(ComposePage(html, "", "")))

	fragment := string(ComposePage("<h1>hi</h1>", "p{}", "x()"))
	assert.Equal(t, "<h1>hi</h1><style>\np{}\n</style>\n<script>\nx()\n</script>\n", fragment)

	upper := string(ComposePage("<HTML><HEAD></HEAD><BODY></BODY></HTML>", "p{}", ""))
	assert.Equal(t, "<HTML><HEAD><style>\np{}\n</style>\n</HEAD><BODY></BODY></HTML>", upper)
}
