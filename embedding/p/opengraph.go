package p

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dyatlov/go-opengraph/opengraph"
	"github.com/t2bot/embed-resolver/embedding/m"
)

type ogMedia struct {
	property string
	kind     m.MediaType
}

// Only the first of each kind is used.
var ogMediaKinds = []ogMedia{
	{property: "og:image", kind: m.MediaTypeImage},
	{property: "og:audio", kind: m.MediaTypeAudio},
	{property: "og:video", kind: m.MediaTypeVideo},
}

// ExtractHtml builds embed data from an HTML document, preferring Open Graph
// tags and falling back to plain HTML equivalents. Malformed markup yields
// whatever could be recovered; it never fails.
func ExtractHtml(html string, baseUrl string) *m.EmbedData {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return m.NewEmbedData(baseUrl)
	}

	pageUrl := baseUrl
	if ogUrl := metaProperty(doc, "og:url"); ogUrl != "" {
		pageUrl = resolveAgainst(baseUrl, ogUrl)
	}

	data := m.NewEmbedData(pageUrl)
	data.Type = calcType(html)

	data.Title = metaProperty(doc, "og:title")
	if data.Title == "" {
		data.Title = strings.TrimSpace(doc.Find("head > title").First().Text())
	}

	data.Description = metaProperty(doc, "og:description")
	if data.Description == "" {
		data.Description = metaContent(doc.Find("meta[name='description']"))
	}

	data.ProviderName = metaProperty(doc, "og:site_name")

	for _, media := range ogMediaKinds {
		mediaUrl := metaProperty(doc, media.property+":secure_url")
		if mediaUrl == "" {
			mediaUrl = metaProperty(doc, media.property)
		}
		if mediaUrl == "" {
			continue
		}

		mediaUrl = resolveAgainst(data.Url, mediaUrl)
		if media.kind == m.MediaTypeImage {
			data.ThumbnailUrl = mediaUrl
		}
		data.AddMedia(media.kind, mediaUrl, mediaUrl)
	}

	return data
}

func metaProperty(doc *goquery.Document, property string) string {
	return metaContent(doc.Find("meta[property='" + property + "']"))
}

func metaContent(s *goquery.Selection) string {
	content, exists := s.First().Attr("content")
	if !exists {
		return ""
	}
	return strings.TrimSpace(content)
}

func calcType(html string) string {
	og := opengraph.NewOpenGraph()
	if err := og.ProcessHTML(strings.NewReader(html)); err != nil {
		return ""
	}
	return og.Type
}

func resolveAgainst(base string, ref string) string {
	refUrl, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	baseUrl, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return baseUrl.ResolveReference(refUrl).String()
}
