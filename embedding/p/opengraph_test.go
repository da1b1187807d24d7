package p

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/t2bot/embed-resolver/embedding/m"
)

func TestExtractHtmlPrefersOpenGraph(t *testing.T) {
	html := `<html><head>
<title>Plain title</title>
<meta name="description" content="Plain description">
<meta property="og:title" content="OG title">
<meta property="og:description" content="OG description">
<meta property="og:site_name" content="Example">
<meta property="og:type" content="article">
<meta property="og:url" content="https://example.org/canonical">
</head><body></body></html>`

	data := ExtractHtml(html, "https://example.org/page?ref=1")
	assert.Equal(t, "https://example.org/canonical", data.Url)
	assert.Equal(t, "OG title", data.Title)
	assert.Equal(t, "OG description", data.Description)
	assert.Equal(t, "Example", data.ProviderName)
	assert.Equal(t, "article", data.Type)
	assert.Empty(t, data.Medias)
	assert.Equal(t, "", data.ThumbnailUrl)
}

func TestExtractHtmlFallsBackToPlainTags(t *testing.T) {
	html := `<html><head>
<title>  Plain title </title>
<meta name="description" content="Plain description">
</head><body><h1>Heading</h1></body></html>`

	data := ExtractHtml(html, "https://example.org/page")
	assert.Equal(t, "https://example.org/page", data.Url)
	assert.Equal(t, "Plain title", data.Title)
	assert.Equal(t, "Plain description", data.Description)
	assert.Equal(t, "", data.ProviderName)
	assert.Equal(t, "", data.Type)
}

func TestExtractHtmlIgnoresTitlesOutsideHead(t *testing.T) {
	html := `<html><head><meta name="description" content="Plain description"></head>
<body><svg><title>Icon</title></svg></body></html>`

	data := ExtractHtml(html, "https://example.org/page")
	assert.Equal(t, "", data.Title)
	assert.Equal(t, "Plain description", data.Description)
}

func TestExtractHtmlEmptyOpenGraphIsAbsent(t *testing.T) {
	html := `<html><head>
<title>Plain title</title>
<meta property="og:title" content="">
<meta property="og:url" content="  ">
</head></html>`

	data := ExtractHtml(html, "https://example.org/page")
	assert.Equal(t, "Plain title", data.Title)
	assert.Equal(t, "https://example.org/page", data.Url)
}

func TestExtractHtmlMedia(t *testing.T) {
	html := `<html><head>
<meta property="og:url" content="https://example.org/post/1">
<meta property="og:image" content="http://cdn.example.org/plain.jpg">
<meta property="og:image:secure_url" content="https://cdn.example.org/secure.jpg">
<meta property="og:image" content="https://cdn.example.org/second.jpg">
<meta property="og:audio" content="/audio/track.mp3">
<meta property="og:video" content="clip.mp4">
</head></html>`

	data := ExtractHtml(html, "https://example.org/redirected")
	assert.Equal(t, "https://cdn.example.org/secure.jpg", data.ThumbnailUrl)
	if !assert.Len(t, data.Medias, 3) {
		return
	}

	assert.Equal(t, &m.Media{
		Type:         m.MediaTypeImage,
		RawUri:       "https://cdn.example.org/secure.jpg",
		ThumbnailUri: "https://cdn.example.org/secure.jpg",
		Location:     "https://example.org/post/1",
	}, data.Medias[0])
	assert.Equal(t, m.MediaTypeAudio, data.Medias[1].Type)
	assert.Equal(t, "https://example.org/audio/track.mp3", data.Medias[1].RawUri)
	assert.Equal(t, m.MediaTypeVideo, data.Medias[2].Type)
	assert.Equal(t, "https://example.org/post/clip.mp4", data.Medias[2].RawUri)
	assert.Equal(t, "https://example.org/post/1", data.Medias[2].Location)
}

func TestExtractHtmlMalformed(t *testing.T) {
	html := `<html><head><title>Broken <b>page</title><meta property="og:description" content="still here"`

	data := ExtractHtml(html, "https://example.org/broken")
	assert.NotNil(t, data)
	assert.Equal(t, "https://example.org/broken", data.Url)
	assert.NotNil(t, data.Medias)
}

func TestExtractFile(t *testing.T) {
	data := ExtractFile("https://example.org/files/cat.png", "image/png", "")
	if !assert.NotNil(t, data) {
		return
	}
	assert.Equal(t, "cat.png", data.Title)
	assert.Equal(t, "https://example.org/files/cat.png", data.ThumbnailUrl)
	assert.Len(t, data.Medias, 1)
	assert.Equal(t, m.MediaTypeImage, data.Medias[0].Type)

	data = ExtractFile("https://example.org/download?id=4", "video/mp4", "holiday.mp4")
	if !assert.NotNil(t, data) {
		return
	}
	assert.Equal(t, "holiday.mp4", data.Title)
	assert.Equal(t, "", data.ThumbnailUrl)
	assert.Equal(t, m.MediaTypeVideo, data.Medias[0].Type)
	assert.Equal(t, "https://example.org/download?id=4", data.Medias[0].Location)

	assert.Nil(t, ExtractFile("https://example.org/doc.pdf", "application/pdf", ""))
}
