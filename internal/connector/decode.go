package connector

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

// flexDecimal decodes a venue number field that may arrive as a JSON
// number, a quoted decimal string, null, or be absent entirely. Paradex
// serializes prices and sizes as strings; Woox mixes the two.
//
// An unparsable value is treated as absent rather than failing the decode:
// a single garbage field must not abort a whole tier when the rest of the
// payload is usable.
type flexDecimal struct {
	dec decimal.Decimal
	ok  bool
}

func (f *flexDecimal) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	f.dec = d
	f.ok = true
	return nil
}

// Decimal returns the decoded value, zero when absent.
func (f flexDecimal) Decimal() decimal.Decimal {
	return f.dec
}

// getJSON issues a GET with the venue client, decodes the JSON body into
// out, and classifies failures per the pipeline taxonomy: request/dial
// errors and non-2xx statuses as transport, undecodable bodies as malformed.
func getJSON(ctx context.Context, client *http.Client, op, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return transportErr(op, err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return transportErr(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusErr(op, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return malformedErr(op, err)
	}
	return nil
}
