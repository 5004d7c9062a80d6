package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-pos-ledger/internal/model"
)

// CurrentVersion is the document version written by Encode.
const CurrentVersion = 2

var (
	ErrNoSnapshot         = errors.New("no snapshot stored")
	ErrUnsupportedVersion = errors.New("snapshot version not supported")
)

// Document is the whole shop state exchanged as one JSON value.
type Document struct {
	Version        int                   `json:"version"`
	ShopName       string                `json:"shopName"`
	ExportDate     time.Time             `json:"exportDate"`
	Products       []model.Product       `json:"products"`
	Sales          []model.Sale          `json:"sales"`
	Clients        []model.Client        `json:"clients"`
	Logs           []model.LogEntry      `json:"logs"`
	PaymentMethods []model.PaymentMethod `json:"paymentMethods"`
	Extras
}

// Extras are the back-office collections the ledger does not own. They are
// written back exactly as they were read.
type Extras struct {
	Categories json.RawMessage `json:"categories"`
	Users      json.RawMessage `json:"users"`
	Expenses   json.RawMessage `json:"expenses"`
}

// DecodeExpenses reads the expense list for reporting.
func (e Extras) DecodeExpenses() ([]model.Expense, error) {
	expenses := []model.Expense{}
	if isEmptyRaw(e.Expenses) {
		return expenses, nil
	}
	if err := json.Unmarshal(e.Expenses, &expenses); err != nil {
		return nil, fmt.Errorf("decode expenses: %w", err)
	}
	return expenses, nil
}

func isEmptyRaw(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func emptyListIfMissing(raw json.RawMessage) json.RawMessage {
	if isEmptyRaw(raw) {
		return json.RawMessage("[]")
	}
	return raw
}

// Empty returns a current-version document with no data.
func Empty(shopName string) *Document {
	doc := &Document{Version: CurrentVersion, ShopName: shopName}
	doc.normalize()
	return doc
}

// Decode parses raw and migrates it to CurrentVersion.
func Decode(raw []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := Migrate(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Encode stamps the current version and renders the document.
func Encode(doc *Document) ([]byte, error) {
	out := *doc
	out.Version = CurrentVersion
	out.normalize()
	raw, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return raw, nil
}

func (d *Document) normalize() {
	if d.Products == nil {
		d.Products = []model.Product{}
	}
	if d.Sales == nil {
		d.Sales = []model.Sale{}
	}
	if d.Clients == nil {
		d.Clients = []model.Client{}
	}
	if d.Logs == nil {
		d.Logs = []model.LogEntry{}
	}
	d.Categories = emptyListIfMissing(d.Categories)
	d.Users = emptyListIfMissing(d.Users)
	d.Expenses = emptyListIfMissing(d.Expenses)
	if len(d.PaymentMethods) == 0 {
		d.PaymentMethods = model.DefaultPaymentMethods()
	}
	for i := range d.Sales {
		if d.Sales[i].Payments == nil {
			d.Sales[i].Payments = []model.SalePayment{}
		}
	}
}
