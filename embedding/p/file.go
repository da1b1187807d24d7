package p

import (
	"net/url"
	"path"

	"github.com/t2bot/embed-resolver/embedding/m"
)

// ExtractFile describes a direct image, audio or video response as a single
// media item. Returns nil for any other content type.
func ExtractFile(fileUrl string, contentType string, filename string) *m.EmbedData {
	kind := m.MediaTypeFromContentType(contentType)
	if kind == m.MediaTypeUnknown {
		return nil
	}

	data := m.NewEmbedData(fileUrl)
	data.Title = filename
	if data.Title == "" {
		data.Title = filenameFromUrl(fileUrl)
	}

	if kind == m.MediaTypeImage {
		data.ThumbnailUrl = fileUrl
	}
	data.AddMedia(kind, fileUrl, fileUrl)
	return data
}

func filenameFromUrl(fileUrl string) string {
	parsed, err := url.Parse(fileUrl)
	if err != nil {
		return ""
	}
	name := path.Base(parsed.Path)
	if name == "." || name == "/" {
		return ""
	}
	return name
}
