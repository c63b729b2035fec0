package feed

import (
	"encoding/xml"
	"fmt"

	"cian-feed/models"
)

// Serialize renders the document as a pretty-printed UTF-8 XML byte
// stream with the standard declaration header and two-space indentation.
// encoding/xml escapes every reserved character in text sourced from the
// rows, so free-text fields need no pre-treatment.
func Serialize(doc *models.Feed) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("feed: serialize: %w", err)
	}
	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}

// Generate is the full engine pass: assemble the batch and serialize it.
func Generate(vocab *Vocabulary, listings []*models.ListingRecord) ([]byte, error) {
	return Serialize(NewBuilder(vocab).Build(listings))
}
