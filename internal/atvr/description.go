package atvr

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// PadID left-pads an upstream product id with zeros to five digits, the form
// used in detail-page and image URLs.
func PadID(externalID string) string {
	if len(externalID) >= 5 {
		return externalID
	}
	return strings.Repeat("0", 5-len(externalID)) + externalID
}

// ImageURL is the upstream location of a product's full-size image.
func ImageURL(base, externalID string) string {
	return fmt.Sprintf("%s/%s_r.jpg", strings.TrimRight(base, "/"), PadID(externalID))
}

// DescriptionScraper reads product descriptions from the public detail page.
type DescriptionScraper struct {
	http      *http.Client
	detailURL string
}

func NewDescriptionScraper(detailURL string, timeout time.Duration) *DescriptionScraper {
	return &DescriptionScraper{
		http:      &http.Client{Timeout: timeout},
		detailURL: detailURL,
	}
}

// Fetch returns the text of the first paragraph in the product's description
// tab. A page without that markup yields "".
func (s *DescriptionScraper) Fetch(ctx context.Context, externalID string) (string, error) {
	endpoint := fmt.Sprintf("%s?productid=%s/", s.detailURL, PadID(externalID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch description %s: %w", externalID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch description %s: status %d", externalID, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse description %s: %w", externalID, err)
	}
	return strings.TrimSpace(doc.Find("#tabs1 p").First().Text()), nil
}
