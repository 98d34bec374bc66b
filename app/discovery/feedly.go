package discovery

import (
	"github.com/feedscout/feedscout/app/feedly"
	"github.com/feedscout/feedscout/app/httpclient"
)

// ByFeedly asks the Feedly search API about the requested URL. It is the
// last-resort strategy for sites that neither serve a feed directly nor link
// to one anywhere in their markup.
type ByFeedly struct {
	client *feedly.Client
}

func NewByFeedly(client *feedly.Client) *ByFeedly {
	return &ByFeedly{client: client}
}

func (d *ByFeedly) Discover(client httpclient.Client, rc *ResponseContainer) ([]string, error) {
	response, err := d.client.Search(rc.RequestURL)
	if err != nil {
		return nil, err
	}

	return response.FeedUrls(), nil
}
