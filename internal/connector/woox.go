package connector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/guttosm/volpulse/config"
	"github.com/guttosm/volpulse/internal/domain/models"
	"github.com/guttosm/volpulse/internal/logger"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Woox acquires traded volume from the Woo X REST API.
//
// Tier order:
//  1. account-summary: GET /v3/account/info (signed); its total_volume field
//     is authoritative when present, plus one bounded page of recent trades
//     for display.
//  2. trade-aggregation: paginated GET /v1/client/trades (signed), summing
//     price × size over every returned record.
//  3. public-estimate: GET /v1/public/market_trades over the configured
//     market sample, projected over the query range (see publicEstimateTier
//     for the exact formula).
//  4. terminal fallback, built by the tier driver.
type Woox struct {
	cfg    config.VenueConfig
	client *http.Client
	log    zerolog.Logger

	// now is an indirection for deterministic request timestamps in tests.
	now func() time.Time
}

// NewWoox builds a Woox connector from venue configuration.
func NewWoox(cfg config.VenueConfig) *Woox {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Woox{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		log:    logger.Component("woox_connector"),
		now:    time.Now,
	}
}

// Platform identifies this connector's venue.
func (w *Woox) Platform() models.Platform { return models.PlatformWoox }

// MarketSummary returns the public exchange information document.
func (w *Woox) MarketSummary(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := getJSON(ctx, w.client, "woox market summary", w.cfg.BaseURL+"/v1/public/info", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// HistoricalVolume runs the tiered acquisition for the query range.
func (w *Woox) HistoricalVolume(ctx context.Context, cred *models.Credential, q models.VolumeQuery) models.VolumeResult {
	tiers := []tier{
		{name: "account-summary", run: w.accountSummaryTier},
		{name: "trade-aggregation", run: w.tradeAggregationTier},
		{name: "public-estimate", run: w.publicEstimateTier},
	}
	fb := fallbackPolicy{synthetic: w.cfg.SyntheticFallback, ceiling: w.cfg.FallbackCeilingUSD}
	return runTiers(ctx, w.log, tiers, fb, cred, q)
}

// wooxSigner validates the credential and builds a request signer from it.
func wooxSigner(cred *models.Credential) (*Signer, error) {
	if cred == nil || cred.APIKey == "" || cred.APISecret == "" {
		return nil, fmt.Errorf("%w: woox requires api key and secret", ErrInvalidCredential)
	}
	return NewSigner(cred.APIKey, cred.APISecret), nil
}

// accountInfoResponse is the /v3/account/info payload envelope.
type accountInfoResponse struct {
	Success bool `json:"success"`
	Data    struct {
		TotalVolume flexDecimal `json:"total_volume"`
	} `json:"data"`
}

// accountSummaryTier treats the account's reported total volume as
// authoritative. A payload without the volume field is an error here so the
// driver falls through to trade aggregation.
func (w *Woox) accountSummaryTier(ctx context.Context, cred *models.Credential, q models.VolumeQuery) (*models.VolumeResult, error) {
	signer, err := wooxSigner(cred)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("timestamp", strconv.FormatInt(w.now().UnixMilli(), 10))
	headers, err := signer.Headers(params)
	if err != nil {
		return nil, err
	}

	var info accountInfoResponse
	u := w.cfg.BaseURL + "/v3/account/info?" + CanonicalQuery(params)
	if err := getJSON(ctx, w.client, "woox account info", u, headers, &info); err != nil {
		return nil, err
	}
	if !info.Success {
		return nil, fmt.Errorf("woox account info: %w: success flag not set", ErrMalformedResponse)
	}
	if !info.Data.TotalVolume.ok {
		return nil, fmt.Errorf("woox account info: no total_volume field")
	}

	total := info.Data.TotalVolume.Decimal()
	if total.IsNegative() {
		total = decimal.Zero
	}

	// One bounded page of recent trades, purely for display. Losing the
	// sample does not invalidate the authoritative total.
	sample, err := w.fetchTradesPage(ctx, signer, q, 1, pageSize)
	if err != nil {
		w.log.Warn().Err(err).Msg("sample trade fetch failed, returning empty sample")
		sample = nil
	}

	return &models.VolumeResult{
		TotalVolumeUSD: total.InexactFloat64(),
		SampleTrades:   capSample(sample),
		SourceTier:     models.SourceAuthenticated,
		RangeStart:     q.StartTime,
		RangeEnd:       q.EndTime,
	}, nil
}

// tradeAggregationTier paginates the private trade listing for the query
// range and sums price × size over every returned record.
func (w *Woox) tradeAggregationTier(ctx context.Context, cred *models.Credential, q models.VolumeQuery) (*models.VolumeResult, error) {
	signer, err := wooxSigner(cred)
	if err != nil {
		return nil, err
	}

	trades, err := fetchAllPages(ctx, func(ctx context.Context, page, size int) ([]models.Trade, error) {
		w.log.Debug().Int("page", page).Msg("fetching woox trades page")
		return w.fetchTradesPage(ctx, signer, q, page, size)
	})
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, t := range trades {
		total = total.Add(t.NotionalUSD())
	}

	return &models.VolumeResult{
		TotalVolumeUSD: total.InexactFloat64(),
		SampleTrades:   capSample(trades),
		SourceTier:     models.SourceAuthenticated,
		RangeStart:     q.StartTime,
		RangeEnd:       q.EndTime,
	}, nil
}

// wooxTrade is one record of /v1/client/trades and /v1/public/market_trades.
type wooxTrade struct {
	ExecutedPrice     flexDecimal `json:"executed_price"`
	ExecutedQuantity  flexDecimal `json:"executed_quantity"`
	Price             flexDecimal `json:"price"`
	Size              flexDecimal `json:"size"`
	ExecutedTimestamp flexDecimal `json:"executed_timestamp"`
}

// toTrade maps a venue record to the domain shape. Private records carry
// executed_* fields, public ones plain price/size.
func (t wooxTrade) toTrade() models.Trade {
	price, size := t.ExecutedPrice, t.ExecutedQuantity
	if !price.ok {
		price = t.Price
	}
	if !size.ok {
		size = t.Size
	}
	var at time.Time
	if t.ExecutedTimestamp.ok {
		// executed_timestamp is fractional epoch seconds
		at = time.UnixMilli(int64(t.ExecutedTimestamp.Decimal().InexactFloat64() * 1000)).UTC()
	}
	return models.Trade{Price: price.Decimal(), Size: size.Decimal(), ExecutedAt: at}
}

// fetchTradesPage retrieves one signed page of /v1/client/trades. Every page
// is signed over its own parameter set since the page number participates in
// the canonical query string.
func (w *Woox) fetchTradesPage(ctx context.Context, signer *Signer, q models.VolumeQuery, page, size int) ([]models.Trade, error) {
	params := url.Values{}
	params.Set("timestamp", strconv.FormatInt(w.now().UnixMilli(), 10))
	params.Set("start_time", strconv.FormatInt(q.StartTime.Unix(), 10))
	params.Set("end_time", strconv.FormatInt(q.EndTime.Unix(), 10))
	params.Set("limit", strconv.Itoa(size))
	params.Set("page", strconv.Itoa(page))

	headers, err := signer.Headers(params)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Rows []wooxTrade `json:"rows"`
	}
	u := w.cfg.BaseURL + "/v1/client/trades?" + CanonicalQuery(params)
	if err := getJSON(ctx, w.client, "woox client trades", u, headers, &payload); err != nil {
		return nil, err
	}

	trades := make([]models.Trade, 0, len(payload.Rows))
	for _, row := range payload.Rows {
		trades = append(trades, row.toTrade())
	}
	return trades, nil
}

// publicEstimateTier estimates range volume from public market trades.
//
// Formula: sum price × size over the returned
// trades of each configured market (a rough 24h figure), then multiply by
// the venue scale constant (default 10, a heuristic extrapolation from the
// sampled markets to the whole exchange) and by the day count
// ceil(range/24h), minimum 1. Individual market failures are skipped; the
// tier fails only when no market responds at all.
func (w *Woox) publicEstimateTier(ctx context.Context, _ *models.Credential, q models.VolumeQuery) (*models.VolumeResult, error) {
	sum := decimal.Zero
	var sample []models.Trade
	fetched := 0
	var lastErr error

	for _, market := range w.cfg.PublicMarkets {
		var payload struct {
			Rows []wooxTrade `json:"rows"`
		}
		u := w.cfg.BaseURL + "/v1/public/market_trades?symbol=" + url.QueryEscape(market)
		if err := getJSON(ctx, w.client, "woox market trades "+market, u, nil, &payload); err != nil {
			lastErr = err
			w.log.Warn().Str("market", market).Err(err).Msg("public market fetch failed, skipping")
			continue
		}
		fetched++
		for _, row := range payload.Rows {
			t := row.toTrade()
			sum = sum.Add(t.NotionalUSD())
			sample = append(sample, t)
		}
	}

	if fetched == 0 {
		if lastErr == nil {
			lastErr = fmt.Errorf("woox public estimate: %w: no markets configured", ErrTransport)
		}
		return nil, lastErr
	}

	scale := w.cfg.PublicScale
	if scale <= 0 {
		scale = 1
	}
	estimate := sum.
		Mul(decimal.NewFromFloat(scale)).
		Mul(decimal.NewFromInt(int64(q.Days())))

	return &models.VolumeResult{
		TotalVolumeUSD: estimate.InexactFloat64(),
		SampleTrades:   capSample(sample),
		SourceTier:     models.SourcePublic,
		RangeStart:     q.StartTime,
		RangeEnd:       q.EndTime,
	}, nil
}
