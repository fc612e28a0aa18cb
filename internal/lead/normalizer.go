package lead

import (
	"strings"

	"github.com/ignite/lead-ledger/internal/fields"
	"github.com/ignite/lead-ledger/internal/ingest"
	"github.com/ignite/lead-ledger/internal/timeparse"
)

// NormalizeOptions configures batch cleaning.
type NormalizeOptions struct {
	// BaseURL prefixes the lead identifier to form DetailURL.
	BaseURL string
}

// NormalizeResult is the outcome of cleaning one raw batch.
//
// MissingDateColumn distinguishes "no data producible" (no date-bearing
// column resolved at all) from a batch that merely cleaned down to zero
// rows. The former is a structural warning for the caller; neither is an
// error.
type NormalizeResult struct {
	Leads             []*Lead
	Dropped           int // rows discarded because their date would not parse
	MissingDateColumn bool
	DateColumn        string // the source column the date was read from
}

// sourceMapping pairs a canonical destination with the resolved source
// column index, or -1 when the source has no such column.
type sourceMapping struct {
	advisor, webID, studentID, nip, id          int
	email, firstName, lastName, fullName        int
	mobile, program, paidDate                   int
	subjectsPaid, paymentAmount, campaign       int
	invoice, secondaryEmail, status             int
}

// Normalize cleans a raw batch into canonical leads: columns resolved via
// the alias tables, dates parsed, full name derived, detail URL computed,
// and every schema field populated. Rows without a parseable date are
// dropped and counted.
func Normalize(batch *ingest.Batch, opts NormalizeOptions) NormalizeResult {
	if batch == nil || len(batch.Columns) == 0 {
		return NormalizeResult{MissingDateColumn: true}
	}

	available := batch.Columns
	m, consumed := resolveMapping(available)
	if m.paidDate < 0 {
		return NormalizeResult{MissingDateColumn: true}
	}

	res := NormalizeResult{DateColumn: available[m.paidDate]}
	for _, row := range batch.Rows {
		l := &Lead{}

		paidAt, ok := timeparse.Parse(cell(row, m.paidDate))
		if !ok {
			res.Dropped++
			continue
		}
		l.PaidAt = paidAt
		l.HasPaidAt = true

		l.Advisor = trimmed(row, m.advisor)
		l.WebID = trimmed(row, m.webID)
		l.StudentID = trimmed(row, m.studentID)
		l.NIP = trimmed(row, m.nip)
		l.ID = trimmed(row, m.id)
		l.Email = trimmed(row, m.email)
		l.MobilePhone = trimmed(row, m.mobile)
		l.Program = trimmed(row, m.program)
		l.SubjectsPaid = trimmed(row, m.subjectsPaid)
		l.PaymentAmount = trimmed(row, m.paymentAmount)
		l.Campaign = trimmed(row, m.campaign)
		l.Invoice = trimmed(row, m.invoice)
		l.SecondaryEmail = trimmed(row, m.secondaryEmail)
		l.Status = trimmed(row, m.status)

		l.FullName = fullName(row, m)

		if l.ID != "" {
			l.DetailURL = opts.BaseURL + l.ID
		}

		// Anything unresolved passes through under its source header.
		for i, col := range available {
			if consumed[i] || col == "" {
				continue
			}
			if v := cell(row, i); v != "" {
				if l.Extra == nil {
					l.Extra = make(map[string]string)
				}
				l.Extra[col] = v
			}
		}

		res.Leads = append(res.Leads, l)
	}
	return res
}

// resolveMapping resolves every canonical field against the batch columns.
// Resolution order matters: the date column and the lead identifier claim
// their columns before looser aliases get a chance to shadow them.
func resolveMapping(available []string) (sourceMapping, []bool) {
	consumed := make([]bool, len(available))
	idx := func(f fields.Field) int {
		var open []string
		pos := make([]int, 0, len(available))
		for i, c := range available {
			if !consumed[i] {
				open = append(open, c)
				pos = append(pos, i)
			}
		}
		name, ok := fields.Resolve(fields.Aliases[f], open)
		if !ok {
			return -1
		}
		for j, c := range open {
			if c == name {
				consumed[pos[j]] = true
				return pos[j]
			}
		}
		return -1
	}

	var m sourceMapping
	m.paidDate = idx(fields.FieldPaidDate)
	m.id = idx(fields.FieldLeadID)
	m.fullName = idx(fields.FieldFullName)
	m.firstName = idx(fields.FieldFirstName)
	m.lastName = idx(fields.FieldLastName)
	m.advisor = idx(fields.FieldAdvisor)
	m.webID = idx(fields.FieldWebID)
	m.studentID = idx(fields.FieldStudentID)
	m.nip = idx(fields.FieldNIP)
	m.email = idx(fields.FieldEmail)
	m.mobile = idx(fields.FieldMobilePhone)
	m.program = idx(fields.FieldProgram)
	m.subjectsPaid = idx(fields.FieldSubjectsPaid)
	m.paymentAmount = idx(fields.FieldPaymentAmount)
	m.campaign = idx(fields.FieldCampaign)
	m.invoice = idx(fields.FieldInvoice)
	m.secondaryEmail = idx(fields.FieldSecondaryEmail)
	m.status = idx(fields.FieldStatus)
	return m, consumed
}

// fullName prefers the source's own full-name column; otherwise it derives
// last-name + first-name, falling back to whichever side resolved.
func fullName(row []string, m sourceMapping) string {
	if v := trimmed(row, m.fullName); v != "" {
		return v
	}
	last := trimmed(row, m.lastName)
	first := trimmed(row, m.firstName)
	switch {
	case last != "" && first != "":
		return last + " " + first
	case last != "":
		return last
	default:
		return first
	}
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func trimmed(row []string, i int) string {
	return strings.TrimSpace(cell(row, i))
}
