// Package fields resolves arbitrary CRM export column names to canonical
// lead fields using declarative alias tables.
package fields

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Field is a canonical lead field name used across all import sources.
type Field string

const (
	FieldAdvisor        Field = "advisor"
	FieldWebID          Field = "web_id"
	FieldStudentID      Field = "student_id"
	FieldNIP            Field = "nip"
	FieldLeadID         Field = "lead_id"
	FieldEmail          Field = "email"
	FieldFirstName      Field = "first_name"
	FieldLastName       Field = "last_name"
	FieldFullName       Field = "full_name"
	FieldMobilePhone    Field = "mobile_phone"
	FieldProgram        Field = "program"
	FieldPaidDate       Field = "paid_date"
	FieldSubjectsPaid   Field = "subjects_paid"
	FieldPaymentAmount  Field = "payment_amount"
	FieldCampaign       Field = "campaign"
	FieldInvoice        Field = "invoice"
	FieldSecondaryEmail Field = "secondary_email"
	FieldStatus         Field = "status"
)

// Aliases maps each canonical field to its known header spellings, highest
// priority first. CRM export tools have renamed these columns several times;
// new spellings go here, never into the resolution logic.
var Aliases = map[Field][]string{
	FieldAdvisor:        {"asesor de ventas", "sales advisor", "asesor", "operador", "operator", "advisor"},
	FieldWebID:          {"web id", "webid"},
	FieldStudentID:      {"id alumno", "identificacion alumno", "student id"},
	FieldNIP:            {"nip"},
	FieldLeadID:         {"lead", "lead id", "id lead", "id"},
	FieldEmail:          {"email", "correo", "e-mail", "mail", "email address"},
	FieldFirstName:      {"nombre", "first name", "firstname", "first"},
	FieldLastName:       {"apellido", "last name", "lastname", "last"},
	FieldFullName:       {"nombre apellido", "full name", "nombre completo", "alumno"},
	FieldMobilePhone:    {"telefono movil", "telefonomovil", "mobile phone", "telefono", "phone", "mobile", "celular"},
	FieldProgram:        {"programa", "program", "maestria", "carrera"},
	FieldPaidDate:       {"paiddate", "paid date", "fecha de pago", "fecha pago", "payment date", "paid at"},
	FieldSubjectsPaid:   {"materias pagadas", "subjects paid"},
	FieldPaymentAmount:  {"monto de pago", "monto", "payment amount", "amount"},
	FieldCampaign:       {"campana", "campaign"},
	FieldInvoice:        {"factura", "invoice"},
	FieldSecondaryEmail: {"correo anahuac", "correo institucional", "secondary email"},
	FieldStatus:         {"estatus", "status"},
}

// Normalize produces the comparison form of a header name: trimmed,
// lowercased, accents stripped, with underscores, dashes and dots collapsed
// to single spaces. Both alias entries and incoming headers go through it.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Trim(s, "\"'")

	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		switch r {
		case '_', '-', '.':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Resolve returns the available column that best matches one of the
// candidate names. Candidates are tried in order: first an exact pass over
// the normalized forms, then a containment pass where an available column
// matches if it contains the candidate on word boundaries ("id" matches
// "web id" but not "apellido"). A miss is not an error; the caller fills
// a default.
func Resolve(candidates, available []string) (string, bool) {
	normalized := make([]string, len(available))
	for i, a := range available {
		normalized[i] = Normalize(a)
	}

	for _, cand := range candidates {
		c := Normalize(cand)
		if c == "" {
			continue
		}
		for i, a := range normalized {
			if a == c {
				return available[i], true
			}
		}
	}

	for _, cand := range candidates {
		c := Normalize(cand)
		if c == "" {
			continue
		}
		for i, a := range normalized {
			if containsWords(a, c) {
				return available[i], true
			}
		}
	}

	return "", false
}

// containsWords reports whether needle occurs in haystack aligned to word
// boundaries.
func containsWords(haystack, needle string) bool {
	return strings.Contains(" "+haystack+" ", " "+needle+" ")
}

// ResolveField resolves a canonical field against the available columns
// using its alias table.
func ResolveField(f Field, available []string) (string, bool) {
	return Resolve(Aliases[f], available)
}
