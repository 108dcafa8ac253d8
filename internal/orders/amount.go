package orders

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a whole-rupiah value. The backend serializes money either as a JSON number or as a
// decimal string ("10000000.00"), so decoding accepts both.
type Amount int64

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*a = 0
			return nil
		}
		b = []byte(s)
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return fmt.Errorf("decode amount %q: %w", b, err)
	}
	*a = Amount(d.Round(0).IntPart())
	return nil
}

func (a Amount) Int64() int64 { return int64(a) }
