package metadata

import (
	"github.com/t2bot/embed-resolver/common/rcontext"
	"github.com/t2bot/embed-resolver/embedding/m"
)

// ImgurMetadata describes an imgur.com image page. Everything is derived
// from the image id, so it never needs the network.
type ImgurMetadata struct {
	ImageId string
	uri     string
	once    fetchOnce
}

func NewImgurMetadata(uri string, imageId string) *ImgurMetadata {
	md := &ImgurMetadata{
		ImageId: imageId,
		uri:     uri,
	}
	md.once.seed(md.build())
	return md
}

func (d *ImgurMetadata) build() *m.EmbedData {
	data := m.NewEmbedData(d.uri)
	data.ProviderName = "Imgur"
	data.ThumbnailUrl = "https://i.imgur.com/" + d.ImageId + "l.jpg"
	data.AddMedia(m.MediaTypeImage, "https://i.imgur.com/"+d.ImageId+".jpg", data.ThumbnailUrl)
	return data
}

func (d *ImgurMetadata) RequestedUri() string {
	return d.uri
}

func (d *ImgurMetadata) ResolvedUri() string {
	return d.uri
}

func (d *ImgurMetadata) Data() *m.EmbedData {
	data, _ := d.once.peek()
	return data
}

func (d *ImgurMetadata) Fetch(ctx rcontext.RequestContext) (*m.EmbedData, error) {
	return d.once.do(ctx, d.uri, func(ctx rcontext.RequestContext) (*m.EmbedData, error) {
		return d.build(), nil
	})
}
