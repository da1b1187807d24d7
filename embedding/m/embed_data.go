package m

import (
	"github.com/ryanuber/go-glob"
)

type MediaType string

const (
	MediaTypeImage   MediaType = "image"
	MediaTypeAudio   MediaType = "audio"
	MediaTypeVideo   MediaType = "video"
	MediaTypeUnknown MediaType = "unknown"
)

// EmbedData is the resolved metadata for a URL. Empty strings are unset fields.
type EmbedData struct {
	Url          string   `json:"url" yaml:"url"`
	Type         string   `json:"type,omitempty" yaml:"type,omitempty"`
	Title        string   `json:"title,omitempty" yaml:"title,omitempty"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	ProviderName string   `json:"provider_name,omitempty" yaml:"provider_name,omitempty"`
	ThumbnailUrl string   `json:"thumbnail_url,omitempty" yaml:"thumbnail_url,omitempty"`
	Medias       []*Media `json:"medias" yaml:"medias"`
}

type Media struct {
	Type         MediaType `json:"type" yaml:"type"`
	RawUri       string    `json:"raw_uri" yaml:"raw_uri"`
	ThumbnailUri string    `json:"thumbnail_uri" yaml:"thumbnail_uri"`
	Location     string    `json:"location" yaml:"location"`
}

func NewEmbedData(url string) *EmbedData {
	return &EmbedData{
		Url:    url,
		Medias: make([]*Media, 0),
	}
}

// AddMedia appends a media item found at the embed's own URL.
func (d *EmbedData) AddMedia(kind MediaType, rawUri string, thumbnailUri string) *Media {
	media := &Media{
		Type:         kind,
		RawUri:       rawUri,
		ThumbnailUri: thumbnailUri,
		Location:     d.Url,
	}
	d.Medias = append(d.Medias, media)
	return media
}

func MediaTypeFromContentType(contentType string) MediaType {
	switch {
	case glob.Glob("image/*", contentType):
		return MediaTypeImage
	case glob.Glob("audio/*", contentType):
		return MediaTypeAudio
	case glob.Glob("video/*", contentType):
		return MediaTypeVideo
	default:
		return MediaTypeUnknown
	}
}
