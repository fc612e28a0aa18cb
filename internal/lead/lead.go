// Package lead defines the canonical lead record, the ledger column
// schemas, and the cleaning pipeline that turns raw CRM exports into
// canonical batches.
package lead

import (
	"sort"
	"strings"
	"time"

	"github.com/ignite/lead-ledger/internal/fields"
)

// Ledger column headers. These are the persisted spellings; changing one is
// a data migration, not a refactor.
const (
	ColAdvisor           = "Sales Advisor"
	ColWebID             = "WEB ID"
	ColStudentID         = "ID"
	ColNIP               = "NIP"
	ColLeadID            = "LEAD"
	ColEmail             = "Email"
	ColFullName          = "Full Name"
	ColMobilePhone       = "Mobile Phone"
	ColProgram           = "Program"
	ColPaidDate          = "Paid Date"
	ColSubjectsPaid      = "Subjects Paid"
	ColPaymentAmount     = "Payment Amount"
	ColCampaign          = "Campaign"
	ColInvoice           = "Invoice"
	ColSecondaryEmail    = "Secondary Email"
	ColDetailURL         = "Lead URL"
	ColAssignedAdvisor   = "Advisor"
	ColStatus            = "Status"
	ColNRC               = "NRC"
	ColSubject           = "Subject"
	ColSchedule          = "Schedule"
	ColComments          = "Comments"
	ColDiscount          = "Discount"
	ColStartCycle        = "Start Cycle"
	ColTickets           = "Tickets"
	ColBalanceActivation = "Balance Activation"
)

// PaidDateLayout is the fixed serialization of PaidAt at the ledger
// boundary: day-first, minute precision.
const PaidDateLayout = "02/01/2006 15:04"

// ActiveColumns is the schema of the active partition and of cleaned
// output batches.
var ActiveColumns = []string{
	ColAdvisor, ColWebID, ColStudentID, ColNIP, ColLeadID, ColEmail,
	ColFullName, ColMobilePhone, ColProgram, ColPaidDate, ColSubjectsPaid,
	ColPaymentAmount, ColCampaign, ColInvoice, ColSecondaryEmail, ColDetailURL,
}

// DeferredColumns extends the active schema with the operational fields
// advisors fill in after consolidation.
var DeferredColumns = append(append([]string{}, ActiveColumns...),
	ColAssignedAdvisor, ColStatus, ColNRC, ColSubject, ColSchedule,
	ColComments, ColDiscount, ColStartCycle, ColTickets, ColBalanceActivation,
)

// Lead is the canonical, fully normalized lead record and the ledger's row
// type. String fields default to empty; PaidAt is only meaningful when
// HasPaidAt is set.
type Lead struct {
	Advisor        string
	WebID          string
	StudentID      string
	NIP            string
	ID             string // stable lead identifier; empty disables dedup for the record
	Email          string
	FullName       string
	MobilePhone    string
	Program        string
	PaidAt         time.Time
	HasPaidAt      bool
	SubjectsPaid   string
	PaymentAmount  string
	Campaign       string
	Invoice        string
	SecondaryEmail string
	DetailURL      string

	// Operational fields, normally filled by advisors in the ledger.
	AssignedAdvisor   string
	Status            string
	NRC               string
	Subject           string
	Schedule          string
	Comments          string
	Discount          string
	StartCycle        string
	Tickets           string
	BalanceActivation string

	// Extra carries source columns that map to no canonical column.
	Extra map[string]string
}

// Value returns the serialized value for a ledger column.
func (l *Lead) Value(col string) string {
	switch col {
	case ColAdvisor:
		return l.Advisor
	case ColWebID:
		return l.WebID
	case ColStudentID:
		return l.StudentID
	case ColNIP:
		return l.NIP
	case ColLeadID:
		return l.ID
	case ColEmail:
		return l.Email
	case ColFullName:
		return l.FullName
	case ColMobilePhone:
		return l.MobilePhone
	case ColProgram:
		return l.Program
	case ColPaidDate:
		if !l.HasPaidAt {
			return ""
		}
		return l.PaidAt.Format(PaidDateLayout)
	case ColSubjectsPaid:
		return l.SubjectsPaid
	case ColPaymentAmount:
		return l.PaymentAmount
	case ColCampaign:
		return l.Campaign
	case ColInvoice:
		return l.Invoice
	case ColSecondaryEmail:
		return l.SecondaryEmail
	case ColDetailURL:
		return l.DetailURL
	case ColAssignedAdvisor:
		return l.AssignedAdvisor
	case ColStatus:
		return l.Status
	case ColNRC:
		return l.NRC
	case ColSubject:
		return l.Subject
	case ColSchedule:
		return l.Schedule
	case ColComments:
		return l.Comments
	case ColDiscount:
		return l.Discount
	case ColStartCycle:
		return l.StartCycle
	case ColTickets:
		return l.Tickets
	case ColBalanceActivation:
		return l.BalanceActivation
	}
	return l.Extra[col]
}

// SetValue stores a value under a ledger column, routing unknown columns
// into Extra.
func (l *Lead) SetValue(col, val string) {
	switch col {
	case ColAdvisor:
		l.Advisor = val
	case ColWebID:
		l.WebID = val
	case ColStudentID:
		l.StudentID = val
	case ColNIP:
		l.NIP = val
	case ColLeadID:
		l.ID = strings.TrimSpace(val)
	case ColEmail:
		l.Email = val
	case ColFullName:
		l.FullName = val
	case ColMobilePhone:
		l.MobilePhone = val
	case ColProgram:
		l.Program = val
	case ColPaidDate:
		if t, err := time.ParseInLocation(PaidDateLayout, strings.TrimSpace(val), time.Local); err == nil {
			l.PaidAt = t
			l.HasPaidAt = true
		}
	case ColSubjectsPaid:
		l.SubjectsPaid = val
	case ColPaymentAmount:
		l.PaymentAmount = val
	case ColCampaign:
		l.Campaign = val
	case ColInvoice:
		l.Invoice = val
	case ColSecondaryEmail:
		l.SecondaryEmail = val
	case ColDetailURL:
		l.DetailURL = val
	case ColAssignedAdvisor:
		l.AssignedAdvisor = val
	case ColStatus:
		l.Status = val
	case ColNRC:
		l.NRC = val
	case ColSubject:
		l.Subject = val
	case ColSchedule:
		l.Schedule = val
	case ColComments:
		l.Comments = val
	case ColDiscount:
		l.Discount = val
	case ColStartCycle:
		l.StartCycle = val
	case ColTickets:
		l.Tickets = val
	case ColBalanceActivation:
		l.BalanceActivation = val
	default:
		if l.Extra == nil {
			l.Extra = make(map[string]string)
		}
		l.Extra[col] = val
	}
}

// Row serializes the lead in the given column order.
func (l *Lead) Row(columns []string) []string {
	row := make([]string, len(columns))
	for i, c := range columns {
		row[i] = l.Value(c)
	}
	return row
}

// FromRow rebuilds a lead from a stored ledger row.
func FromRow(columns, row []string) *Lead {
	l := &Lead{}
	for i, c := range columns {
		if i >= len(row) {
			break
		}
		if row[i] == "" {
			continue
		}
		l.SetValue(c, row[i])
	}
	return l
}

// StatusText returns the status used for deferral classification: the
// canonical status when present, otherwise the first passthrough column
// whose name contains "status".
func (l *Lead) StatusText() string {
	if l.Status != "" {
		return l.Status
	}
	for _, k := range sortedKeys(l.Extra) {
		// "estatus" in legacy exports also contains this stem.
		if strings.Contains(fields.Normalize(k), "status") {
			return l.Extra[k]
		}
	}
	return ""
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ValueByHeader matches an arbitrary external header (e.g. a remote
// workbook table column) to this lead, case-insensitively. Unknown headers
// yield empty strings so remote row shapes are always complete.
func (l *Lead) ValueByHeader(header string) string {
	want := fields.Normalize(header)
	for _, c := range DeferredColumns {
		if fields.Normalize(c) == want {
			return l.Value(c)
		}
	}
	for k, v := range l.Extra {
		if fields.Normalize(k) == want {
			return v
		}
	}
	return ""
}

// ExtraColumns returns the passthrough column names of the batch, in first
// appearance order, excluding any already present in columns.
func ExtraColumns(leads []*Lead, columns []string) []string {
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		seen[c] = true
	}
	var extras []string
	for _, l := range leads {
		for _, k := range sortedKeys(l.Extra) {
			if !seen[k] {
				seen[k] = true
				extras = append(extras, k)
			}
		}
	}
	return extras
}
