package discovery

import (
	"strings"

	"github.com/feedscout/feedscout/app/httpclient"
)

// ByContentType recognizes responses that already are a feed by their
// Content-Type header and returns the originally requested URL. Running this
// strategy first avoids a pointless second fetch when the caller handed us a
// feed URL directly.
type ByContentType struct{}

func NewByContentType() *ByContentType {
	return &ByContentType{}
}

func (d *ByContentType) Discover(client httpclient.Client, rc *ResponseContainer) ([]string, error) {
	contentType := rc.Response.ContentType()

	for _, mimeType := range feedMIMETypes {
		if strings.HasPrefix(contentType, mimeType) {
			return []string{rc.RequestURL}, nil
		}
	}

	return nil, nil
}
