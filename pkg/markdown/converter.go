package markdown

import (
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
)

var (
	extensions = blackfriday.CommonExtensions | blackfriday.HardLineBreak | blackfriday.NoEmptyLineBeforeBlock

	// Raw HTML in model output is dropped and links are neutralised
	htmlFlags = blackfriday.SkipHTML |
		blackfriday.Safelink |
		blackfriday.HrefTargetBlank |
		blackfriday.NofollowLinks |
		blackfriday.NoreferrerLinks

	blankLines = regexp.MustCompile(`\n{3,}`)
)

// ToHTML renders a chat reply written in markdown as an HTML fragment for web clients
func ToHTML(markdown string) string {
	if strings.TrimSpace(markdown) == "" {
		return ""
	}

	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{Flags: htmlFlags})
	html := string(blackfriday.Run([]byte(markdown),
		blackfriday.WithExtensions(extensions),
		blackfriday.WithRenderer(renderer),
	))

	html = blankLines.ReplaceAllString(html, "\n\n")
	return strings.TrimSpace(html)
}
