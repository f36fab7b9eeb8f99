// Package source fetches raw records from the World Bank services.
//
// Every stream shares one paginated collection fetcher; the adapters in this
// package differ only in endpoint, query parameters, and where the
// collection sits inside the response body. A fetch never fails outright:
// pages gathered before an error are returned in a Batch marked incomplete.
package source

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/wbwatch/errors"
	"github.com/teranos/wbwatch/internal/httpclient"
	"github.com/teranos/wbwatch/logger"
	"github.com/teranos/wbwatch/record"
)

// Getter is the subset of httpclient.RetryClient a source needs
type Getter interface {
	Get(ctx context.Context, rawURL string, params url.Values) (*httpclient.Response, error)
}

// Source yields the current raw records of one stream
type Source interface {
	Fetch(ctx context.Context) Batch
}

// Batch is the outcome of one fetch
type Batch struct {
	Records  []record.Raw
	Pages    int   // pages successfully read
	Complete bool  // false when a page failed; Records then holds earlier pages only
	Err      error // the failure that ended an incomplete fetch
}

// RegionFilter drops records that belong to another borrower country.
// The services are queried with a country parameter, so this only guards
// against results that ignore it.
type RegionFilter struct {
	Field string   // record key holding a code, a name, or a list of either
	Allow []string // accepted values, compared case-insensitively
	// Required drops records that lack Field entirely. When false a
	// record without the field is kept.
	Required bool
}

// Keep reports whether raw belongs to the monitored region
func (f RegionFilter) Keep(raw record.Raw) bool {
	if f.Field == "" {
		return true
	}
	values := record.Strings(raw, f.Field)
	if len(values) == 0 {
		return !f.Required
	}
	for _, v := range values {
		for _, a := range f.Allow {
			if strings.EqualFold(strings.TrimSpace(v), a) {
				return true
			}
		}
	}
	return false
}

// Collection describes one paginated endpoint
type Collection struct {
	Stream      string // for logging
	URL         string
	RowsPerPage int
	MaxPages    int // 0 follows the reported total
	// Params builds the query for a 1-based page number
	Params   func(page, rows int) url.Values
	Envelope Envelope
	Region   RegionFilter
}

// Paginated fetches a Collection page by page.
//
// Paging continues while the previous page was non-empty and
// page*rows is below the reported total, where rows is the page size the
// service reports (falling back to RowsPerPage). A response without a total
// is treated as the only page.
type Paginated struct {
	client Getter
	coll   Collection
	logger *zap.SugaredLogger
}

// NewPaginated creates a fetcher for coll
func NewPaginated(client Getter, coll Collection, log *zap.SugaredLogger) *Paginated {
	return &Paginated{
		client: client,
		coll:   coll,
		logger: logger.OrNop(log),
	}
}

// Fetch reads every page. It never returns an error; see Batch.
func (p *Paginated) Fetch(ctx context.Context) Batch {
	log := logger.FromContext(logger.WithStream(ctx, p.coll.Stream), p.logger)
	batch := Batch{Complete: true}
	dropped := 0

	for page := 1; ; page++ {
		if p.coll.MaxPages > 0 && page > p.coll.MaxPages {
			break
		}
		if err := ctx.Err(); err != nil {
			return p.fail(log, batch, page, errors.Wrap(err, "fetch cancelled"))
		}

		resp, err := p.client.Get(ctx, p.coll.URL, p.coll.Params(page, p.coll.RowsPerPage))
		if err != nil {
			return p.fail(log, batch, page, err)
		}
		if !resp.OK() {
			return p.fail(log, batch, page, errors.NewStatusError(resp.StatusCode, string(resp.Body)))
		}
		decoded, err := p.coll.Envelope.Decode(resp.Body)
		if err != nil {
			return p.fail(log, batch, page, err)
		}

		for _, raw := range decoded.Records {
			if p.coll.Region.Keep(raw) {
				batch.Records = append(batch.Records, raw)
			} else {
				dropped++
			}
		}
		batch.Pages = page

		log.Debugw("fetched page",
			logger.FieldPage, page,
			logger.FieldCount, len(decoded.Records),
			logger.FieldTotalCount, decoded.Total)

		rows := decoded.Rows
		if rows <= 0 {
			rows = p.coll.RowsPerPage
		}
		if len(decoded.Records) == 0 || !decoded.HasTotal || rows <= 0 || page*rows >= decoded.Total {
			break
		}
	}

	if dropped > 0 {
		log.Debugw("dropped records outside region", logger.FieldCount, dropped)
	}
	log.Infow("fetched stream",
		logger.FieldCount, len(batch.Records),
		"pages", batch.Pages)
	return batch
}

func (p *Paginated) fail(log *zap.SugaredLogger, batch Batch, page int, err error) Batch {
	batch.Complete = false
	batch.Err = errors.Wrapf(err, "%s page %d", p.coll.Stream, page)
	log.Warnw("fetch stopped early, keeping earlier pages",
		logger.FieldPage, page,
		logger.FieldCount, len(batch.Records),
		logger.FieldError, err.Error())
	return batch
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
