package source

import (
	"net/url"

	"go.uber.org/zap"

	"github.com/teranos/wbwatch/am"
)

// NewProjects fetches active projects for the configured country from the
// Projects API. The collection is an object keyed by project id.
func NewProjects(client Getter, cfg am.StreamConfig, region am.RegionConfig, log *zap.SugaredLogger) *Paginated {
	return NewPaginated(client, Collection{
		Stream:      am.StreamProjects,
		URL:         cfg.URL,
		RowsPerPage: cfg.RowsPerPage,
		MaxPages:    cfg.MaxPages,
		Params: func(page, rows int) url.Values {
			v := url.Values{}
			v.Set("format", "json")
			if cfg.Status != "" {
				v.Set("status", cfg.Status)
			}
			v.Set("countrycode_exact", region.CountryCode)
			v.Set("rows", itoa(rows))
			v.Set("page", itoa(page))
			return v
		},
		Envelope: Envelope{Keys: []string{"projects"}},
		Region: RegionFilter{
			Field:    "countrycode",
			Allow:    []string{region.CountryCode},
			Required: true,
		},
	}, log)
}

// NewProcurementPlans fetches procurement plan documents from the
// Documents & Reports API. Pages are addressed by row offset, and the
// collection object carries a "facets" entry that is not a document.
func NewProcurementPlans(client Getter, cfg am.StreamConfig, region am.RegionConfig, log *zap.SugaredLogger) *Paginated {
	return NewPaginated(client, Collection{
		Stream:      am.StreamProcurementPlans,
		URL:         cfg.URL,
		RowsPerPage: cfg.RowsPerPage,
		MaxPages:    cfg.MaxPages,
		Params: func(page, rows int) url.Values {
			v := url.Values{}
			v.Set("format", "json")
			v.Set("rows", itoa(rows))
			if page > 1 {
				v.Set("os", itoa((page-1)*rows))
			}
			v.Set("country", region.CountryName)
			if cfg.DocumentType != "" {
				v.Set("docty_exact", cfg.DocumentType)
			}
			return v
		},
		Envelope: Envelope{Keys: []string{"documents"}, Skip: []string{"facets"}},
		Region: RegionFilter{
			Field: "count",
			Allow: []string{region.CountryName, region.CountryCode},
		},
	}, log)
}

// NewTenders fetches procurement notices from the Finances One dataset
// named by cfg.AssetID.
func NewTenders(client Getter, cfg am.StreamConfig, region am.RegionConfig, log *zap.SugaredLogger) *Paginated {
	return newFinancesOne(client, am.StreamTenders, "country_code", cfg, region, log)
}

// NewAwards fetches contract awards from the Finances One dataset named by
// cfg.AssetID.
func NewAwards(client Getter, cfg am.StreamConfig, region am.RegionConfig, log *zap.SugaredLogger) *Paginated {
	return newFinancesOne(client, am.StreamAwards, "borrower_country_code", cfg, region, log)
}

// Finances One answers either with a bare array or with the rows under
// "data" or "rows".
func newFinancesOne(client Getter, stream, countryParam string, cfg am.StreamConfig, region am.RegionConfig, log *zap.SugaredLogger) *Paginated {
	return NewPaginated(client, Collection{
		Stream:      stream,
		URL:         cfg.URL,
		RowsPerPage: cfg.RowsPerPage,
		MaxPages:    cfg.MaxPages,
		Params: func(page, rows int) url.Values {
			v := url.Values{}
			v.Set("assetId", cfg.AssetID)
			v.Set(countryParam, region.CountryCode)
			if cfg.Query != "" {
				v.Set("q", cfg.Query)
			}
			v.Set("page", itoa(page))
			v.Set("page_size", itoa(rows))
			return v
		},
		Envelope: Envelope{Keys: []string{"data", "rows"}},
		Region: RegionFilter{
			Field: countryParam,
			Allow: []string{region.CountryCode, region.CountryName},
		},
	}, log)
}
