package record

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstOfOrderedFallback(t *testing.T) {
	id := Fields("notice_id", "tender_id", "contract_id", "id")

	tests := []struct {
		name   string
		raw    Raw
		want   string
		wantOK bool
	}{
		{"first wins", Raw{"notice_id": "N1", "id": "X"}, "N1", true},
		{"skips null", Raw{"notice_id": nil, "tender_id": "T2"}, "T2", true},
		{"skips empty string", Raw{"notice_id": "", "contract_id": "C3"}, "C3", true},
		{"number keeps digits", Raw{"id": json.Number("1234567890123")}, "1234567890123", true},
		{"float id", Raw{"id": float64(42)}, "42", true},
		{"trims whitespace", Raw{"id": "  P100 "}, "P100", true},
		{"objects are not ids", Raw{"id": map[string]interface{}{}}, "", false},
		{"absent", Raw{}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := id(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFirstPresentStopsAtBlank(t *testing.T) {
	id := FirstPresent("notice_id", "tender_id", "contract_id", "id")

	tests := []struct {
		name   string
		raw    Raw
		want   string
		wantOK bool
	}{
		{"first wins", Raw{"notice_id": "N1", "id": "X"}, "N1", true},
		{"null falls through", Raw{"notice_id": nil, "tender_id": "T2"}, "T2", true},
		{"empty string stops the chain", Raw{"notice_id": "", "contract_id": "C3"}, "", false},
		{"number keeps digits", Raw{"tender_id": json.Number("77")}, "77", true},
		{"absent", Raw{"title": "x"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := id(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFirstStringKeepsEmpty(t *testing.T) {
	marker := FirstString("updated_date", "last_update_date", "publish_date")

	assert.Equal(t, "", marker.Get(Raw{"updated_date": "", "publish_date": "2024-01-01"}))
	assert.Equal(t, "2024-01-01", marker.Get(Raw{"updated_date": nil, "publish_date": "2024-01-01"}))
	assert.Equal(t, "2024-01-01", marker.Get(Raw{"updated_date": json.Number("1"), "publish_date": "2024-01-01"}))
	assert.Equal(t, "x", marker.Or(Raw{}, "x"))
}

func TestStringFieldsRejectNumbers(t *testing.T) {
	url := StringFields("url", "notice_url")
	assert.Equal(t, "https://b", url.Get(Raw{"url": 7, "notice_url": "https://b"}))
}

func TestAccessorDefaults(t *testing.T) {
	supplier := FirstOf(StringFields("supplier_name", "vendor_name"), Const("(Unknown supplier)"))

	assert.Equal(t, "Acme", supplier.Get(Raw{"vendor_name": "Acme"}))
	assert.Equal(t, "(Unknown supplier)", supplier.Get(Raw{}))
	assert.Equal(t, "N/A", Fields("docdt").Or(Raw{}, "N/A"))
	assert.Equal(t, "", Fields("docdt").Get(Raw{}))
}

func TestMoney(t *testing.T) {
	tests := []struct {
		name   string
		v      interface{}
		want   string
		wantOK bool
	}{
		{"string as given", "1250000", "$1250000", true},
		{"json number grouped", json.Number("1250000"), "$1,250,000.00", true},
		{"float grouped", 987.5, "$987.50", true},
		{"small", json.Number("12"), "$12.00", true},
		{"negative", -1234567.891, "$-1,234,567.89", true},
		{"empty", "", "", false},
		{"nil", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Money(tt.v)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMoneyField(t *testing.T) {
	amount := MoneyField("contract_amount_usd", "amount")
	assert.Equal(t, "$5,000.00", amount.Get(Raw{"contract_amount_usd": nil, "amount": json.Number("5000")}))
	assert.Equal(t, "N/A", amount.Or(Raw{}, "N/A"))
}

func TestDatePart(t *testing.T) {
	approval := DatePart(StringField("boardapprovaldate"))
	assert.Equal(t, "2023-05-04", approval.Get(Raw{"boardapprovaldate": "2023-05-04T00:00:00Z"}))
	assert.Equal(t, "2023-05-04", approval.Get(Raw{"boardapprovaldate": "2023-05-04"}))
	assert.Equal(t, "N/A", approval.Or(Raw{}, "N/A"))
}
