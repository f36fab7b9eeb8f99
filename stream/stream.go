// Package stream declares the monitored data streams.
//
// A Descriptor binds everything that differs between streams: where the
// records come from, how a record is identified and versioned, which fields
// are searched for keywords, and how an alert is rendered. The monitor runs
// the same pipeline over every enabled descriptor.
package stream

import (
	"go.uber.org/zap"

	"github.com/teranos/wbwatch/am"
	"github.com/teranos/wbwatch/notify"
	"github.com/teranos/wbwatch/record"
	"github.com/teranos/wbwatch/source"
	"github.com/teranos/wbwatch/sym"
)

// Descriptor describes one stream
type Descriptor struct {
	Name      string // state key; one of am.StreamNames
	Label     string // human name used in summaries
	Symbol    string
	Enabled   bool
	StateFile string // file name under the state directory (json backend)

	Source source.Source
	Text   []record.TextSource
	ID     record.Accessor
	Marker record.Accessor
	Render func(rec record.Record, isUpdate bool) notify.Message
}

// Identify resolves the canonical id and marker of raw. ok is false when the
// record has no usable id and must be skipped.
func (d Descriptor) Identify(raw record.Raw) (record.Record, bool) {
	id, ok := d.ID(raw)
	if !ok || id == "" {
		return record.Record{}, false
	}
	return record.Record{ID: id, Marker: d.Marker.Get(raw), Raw: raw}, true
}

// SearchText returns the text keywords are matched against
func (d Descriptor) SearchText(raw record.Raw) string {
	return record.Extract(raw, d.Text...)
}

// All returns every known stream in processing order, enabled or not
func All(cfg *am.Config, client source.Getter, log *zap.SugaredLogger) []Descriptor {
	region := cfg.Region
	streams := cfg.Streams
	contractor := cfg.Keywords.ContractorTerms

	return []Descriptor{
		{
			Name:      am.StreamProjects,
			Label:     "Projects",
			Symbol:    sym.Projects,
			Enabled:   streams.Projects.Enabled,
			StateFile: streams.Projects.StateFile,
			Source:    source.NewProjects(client, streams.Projects, region, log),
			Text:      []record.TextSource{record.Text("project_name"), record.TextValues("project_abstract")},
			ID:        record.Field("id"),
			Marker:    record.StringField("p2a_updated_date"),
			Render: func(rec record.Record, isUpdate bool) notify.Message {
				return ProjectMessage(rec, isUpdate, region.CountryName, contractor)
			},
		},
		{
			Name:      am.StreamProcurementPlans,
			Label:     "Procurement plans",
			Symbol:    sym.Plans,
			Enabled:   streams.ProcurementPlans.Enabled,
			StateFile: streams.ProcurementPlans.StateFile,
			Source:    source.NewProcurementPlans(client, streams.ProcurementPlans, region, log),
			Text: []record.TextSource{
				record.Text("display_title"),
				record.TextEach("docna", "docna"),
				record.Text("theme"),
				record.Text("subsc"),
				record.TextEach("sectr", "sector"),
			},
			ID:     record.Field("id"),
			Marker: record.StringField("last_modified_date"),
			Render: func(rec record.Record, isUpdate bool) notify.Message {
				return ProcurementPlanMessage(rec, isUpdate, region.CountryName)
			},
		},
		{
			Name:      am.StreamTenders,
			Label:     "Tenders",
			Symbol:    sym.Tenders,
			Enabled:   streams.Tenders.Enabled,
			StateFile: streams.Tenders.StateFile,
			Source:    source.NewTenders(client, streams.Tenders, region, log),
			Text: []record.TextSource{
				record.Text("notice_title"),
				record.Text("tender_title"),
				record.Text("contract_title"),
				record.Text("description"),
				record.Text("summary"),
			},
			ID:     record.FirstPresent("notice_id", "tender_id", "contract_id", "id"),
			Marker: record.FirstString("updated_date", "last_update_date", "notice_publish_date", "publish_date"),
			Render: func(rec record.Record, isUpdate bool) notify.Message {
				return TenderMessage(rec, isUpdate, region.CountryName)
			},
		},
		{
			Name:      am.StreamAwards,
			Label:     "Awards",
			Symbol:    sym.Awards,
			Enabled:   streams.Awards.Enabled,
			StateFile: streams.Awards.StateFile,
			Source:    source.NewAwards(client, streams.Awards, region, log),
			Text: []record.TextSource{
				record.Text("contract_title"),
				record.Text("description"),
				record.Text("procurement_description"),
				record.Text("project_name"),
			},
			ID:     record.FirstPresent("contract_id", "award_id", "id"),
			Marker: record.FirstString("updated_date", "last_update_date", "award_date", "contract_sign_date"),
			Render: func(rec record.Record, isUpdate bool) notify.Message {
				return AwardMessage(rec, isUpdate, region.CountryName)
			},
		},
	}
}

// Enabled returns the enabled streams in processing order
func Enabled(cfg *am.Config, client source.Getter, log *zap.SugaredLogger) []Descriptor {
	var out []Descriptor
	for _, d := range All(cfg, client, log) {
		if d.Enabled {
			out = append(out, d)
		}
	}
	return out
}
