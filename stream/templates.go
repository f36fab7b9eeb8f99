package stream

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/teranos/wbwatch/notify"
	"github.com/teranos/wbwatch/record"
)

// Embed colors
const (
	ColorProject         = 0x1ABC9C
	ColorProcurementPlan = 0x2ECC71
	ColorTender          = 0xE67E22
	ColorAward           = 0xC0392B
	ColorHeartbeat       = 0x3498DB
)

// Fallback links used when a record carries no URL of its own
const (
	ProjectDetailURL   = "https://projects.worldbank.org/en/projects-operations/project-detail/"
	ProjectsOverview   = "https://projects.worldbank.org/en/projects-operations/projects-overview"
	DocumentsReports   = "https://documents.worldbank.org/en/publication/documents-reports"
	ProcurementNotices = "https://www.worldbank.org/en/projects-operations/products-and-services/procurement-projects-programs"
	ContractAwards     = "https://financesone.worldbank.org/contract-awards-in-investment-project-financing-(since-fy-2020)/DS01666"
	googleSearch       = "https://www.google.com/search?q="
)

const notAvailable = "N/A"

func link(label, target string) string {
	return fmt.Sprintf("[%s](%s)", label, target)
}

func inline(name, value string) notify.Field {
	return notify.Field{Name: name, Value: value, Inline: true}
}

func block(name, value string) notify.Field {
	return notify.Field{Name: name, Value: value}
}

func footer(kind, country string) string {
	return fmt.Sprintf("World Bank GIS Monitor (%s, %s)", kind, country)
}

// ContractorSearchURL builds a web search for firms working on a project:
// "World Bank" "<name>" "<term>"... "contractor", joined with '+' and then
// query-escaped as a whole.
func ContractorSearchURL(projectName string, terms []string) string {
	quoted := make([]string, 0, len(terms)+3)
	quoted = append(quoted, `"World Bank"`, `"`+projectName+`"`)
	for _, t := range terms {
		quoted = append(quoted, `"`+t+`"`)
	}
	quoted = append(quoted, `"contractor"`)
	return googleSearch + url.QueryEscape(strings.Join(quoted, "+"))
}

var (
	projectName   = record.StringField("project_name")
	projectURL    = record.StringField("url")
	approvalDate  = record.DatePart(record.StringField("boardapprovaldate"))
	projectAmount = record.FirstOf(
		dollars(record.StringField("totalamt")),
		dollars(record.StringField("totalcommamt")),
	)
)

// dollars prefixes a textual amount with "$"
func dollars(a record.Accessor) record.Accessor {
	return func(raw record.Raw) (string, bool) {
		v, ok := a(raw)
		if !ok {
			return "", false
		}
		return "$" + v, true
	}
}

// ProjectMessage renders a new or updated project alert
func ProjectMessage(rec record.Record, isUpdate bool, country string, contractorTerms []string) notify.Message {
	name := projectName.Or(rec.Raw, "(No title)")

	target := projectURL.Or(rec.Raw, "")
	if target == "" {
		if rec.ID != "" {
			target = ProjectDetailURL + rec.ID
		} else {
			target = ProjectsOverview
		}
	}

	kind := "New Project Plan"
	if isUpdate {
		kind = "Project Update"
	}

	return notify.Message{
		Title: kind + ": " + name,
		URL:   target,
		Color: ColorProject,
		Fields: []notify.Field{
			inline("Project ID", orUnknown(rec.ID)),
			inline("Approval Date", approvalDate.Or(rec.Raw, notAvailable)),
			inline("Total Funding Amount", projectAmount.Or(rec.Raw, notAvailable)),
			block("World Bank Project Page", link("Open Project", target)),
			block("Find Contractor", link("Search on Google", ContractorSearchURL(name, contractorTerms))),
		},
		Footer: footer("Projects", country),
	}
}

var (
	documentTitle = record.FirstOf(
		record.StringField("display_title"),
		record.StringField("projn"),
		record.Const("(Unknown project)"),
	)
	documentProject = record.Field("projectid")
	documentType    = record.Field("docty")
	documentDate    = record.Fields("docdt", "disclosure_date", "datestored")
	documentPage    = record.StringField("url")
	documentPDF     = record.StringField("pdfurl")
)

// ProcurementPlanMessage renders a new or updated procurement plan alert
func ProcurementPlanMessage(rec record.Record, isUpdate bool, country string) notify.Message {
	page := documentPage.Or(rec.Raw, DocumentsReports)
	pdf := documentPDF.Or(rec.Raw, page)

	kind := "New Procurement Plan"
	if isUpdate {
		kind = "Updated Procurement Plan"
	}

	return notify.Message{
		Title: kind + ": " + documentTitle.Get(rec.Raw),
		URL:   pdf,
		Color: ColorProcurementPlan,
		Fields: []notify.Field{
			inline("Document ID", orUnknown(rec.ID)),
			inline("Project ID", documentProject.Or(rec.Raw, notAvailable)),
			inline("Document Type", documentType.Or(rec.Raw, "Procurement Plan")),
			inline("Document Date", documentDate.Or(rec.Raw, notAvailable)),
			block("Project / Document Page", link("Open in Browser", page)),
			block("Download Procurement Plan (PDF)", link("Open PDF", pdf)),
		},
		Footer: footer("Procurement Plans", country),
	}
}

var (
	tenderTitle = record.FirstOf(
		record.StringFields("notice_title", "tender_title", "contract_title"),
		record.Const("(Untitled procurement notice)"),
	)
	tenderMethod = record.Fields("procurement_method", "procurement_method_name", "method")
	tenderDate   = record.Fields("notice_publish_date", "publish_date", "date")
	tenderURL    = record.StringFields("url", "notice_url", "tender_url", "link")
)

// TenderMessage renders a tender or expression-of-interest alert
func TenderMessage(rec record.Record, isUpdate bool, country string) notify.Message {
	target := tenderURL.Or(rec.Raw, ProcurementNotices)

	kind := "New GIS Tender / EOI"
	if isUpdate {
		kind = "Updated GIS Tender / EOI"
	}

	return notify.Message{
		Title: kind + ": " + tenderTitle.Get(rec.Raw),
		URL:   target,
		Color: ColorTender,
		Fields: []notify.Field{
			inline("Notice / Tender ID", orUnknown(rec.ID)),
			inline("Procurement Method", tenderMethod.Or(rec.Raw, notAvailable)),
			inline("Publish Date", tenderDate.Or(rec.Raw, notAvailable)),
			block("Tender / EOI Details", link("Open Notice", target)),
		},
		Footer: footer("Tenders", country),
	}
}

var (
	awardSupplier = record.StringFields("supplier_name", "supplier", "contractor_name", "vendor_name")
	awardAmount   = record.MoneyField("contract_amount_usd", "contract_value_usd", "contract_value", "amount")
	awardDate     = record.Fields("award_date", "contract_sign_date", "date")
	awardURL      = record.StringFields("url", "contract_url", "link")
)

// AwardMessage renders a competitor alert for a contract award. Updates
// render the same as new awards.
func AwardMessage(rec record.Record, isUpdate bool, country string) notify.Message {
	supplier := awardSupplier.Or(rec.Raw, "(Unknown supplier)")
	target := awardURL.Or(rec.Raw, ContractAwards)

	return notify.Message{
		Title: "Competitor Alert: " + supplier,
		URL:   target,
		Color: ColorAward,
		Fields: []notify.Field{
			inline("Contract ID", orUnknown(rec.ID)),
			inline("Supplier", supplier),
			inline("Award Amount", awardAmount.Or(rec.Raw, notAvailable)),
			inline("Award Date", awardDate.Or(rec.Raw, notAvailable)),
			block("Contract / Award Details", link("Open Award", target)),
			block("Keywords", "GIS / spatial-related contract award in "+country),
		},
		Footer: footer("Awards", country),
	}
}

func orUnknown(id string) string {
	if id == "" {
		return "(unknown)"
	}
	return id
}
