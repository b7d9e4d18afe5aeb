// Package badge mints and decodes the opaque codes printed into attendee
// badge QR images.
package badge

import (
	"fmt"

	"github.com/skip2/go-qrcode"
	hashids "github.com/speps/go-hashids/v2"
)

const minCodeLength = 12

// Codec encodes a (user, conference) pair into a short hashid and back.
// Codes are deterministic for a pair, so re-issuing a badge yields the
// same code.
type Codec struct {
	h *hashids.HashID
}

func NewCodec(salt string) (*Codec, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = minCodeLength

	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, err
	}
	return &Codec{h: h}, nil
}

func (c *Codec) Encode(userID, conferenceID int64) (string, error) {
	return c.h.EncodeInt64([]int64{userID, conferenceID})
}

func (c *Codec) Decode(code string) (userID, conferenceID int64, err error) {
	ids, err := c.h.DecodeInt64WithError(code)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid badge code: %w", err)
	}
	if len(ids) != 2 {
		return 0, 0, fmt.Errorf("invalid badge code: expected 2 parts, got %d", len(ids))
	}
	return ids[0], ids[1], nil
}

// PNG renders the code as a QR image sized for badge printing.
func PNG(code string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(code, qrcode.Medium, size)
}
