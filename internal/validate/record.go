package validate

import (
	"strings"

	"github.com/joseph-ayodele/debt-tracker/internal/common"
	"github.com/joseph-ayodele/debt-tracker/internal/entity"
	"github.com/joseph-ayodele/debt-tracker/internal/money"
)

// Rejection describes a discarded candidate.
type Rejection struct {
	Index  int
	Errors []common.ValidationError
}

// Fields lists the fields that failed.
func (r Rejection) Fields() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Field)
	}
	return out
}

func rule(ok bool, message string) common.ValidationRule {
	return func(fieldName string, value interface{}) *common.ValidationError {
		if ok {
			return nil
		}
		return &common.ValidationError{Field: fieldName, Value: value, Message: message}
	}
}

// Record validates one candidate. Any failing field discards the whole record;
// the error is a *common.PipelineError of kind RecordValidationFailure.
func Record(c entity.Candidate) (entity.ClientRecord, []common.ValidationError, error) {
	rawID := c.String("id")
	rawName := c.String("name")
	rawAmount := c.String("debt_amount")
	rawDate := c.String("due_date")
	rawStatus := c.String("status")
	rawContact := c.String("contact")

	id, idOK := NormalizeID(rawID)
	name := NormalizeName(rawName)
	amount, amountOK := ParseAmount(rawAmount)
	due, dueOK := NormalizeDueDate(rawDate)
	status, statusOK := NormalizeStatus(rawStatus)
	contact, mobile, contactOK := FormatPhone(rawContact)

	v := common.NewValidator().
		Field("id", rawID, common.Required, rule(idOK, "must be 11-14 digits or a TEMP_ id")).
		Field("name", name, common.Required, common.MinLength(2)).
		Field("debt_amount", rawAmount, common.Required, rule(amountOK, "must be a positive amount")).
		Field("due_date", rawDate, common.Required, rule(dueOK, "must be DD/MM/YYYY or PENDENTE")).
		Field("status", rawStatus, common.Required, rule(statusOK, "must be a known status")).
		Field("contact", rawContact, common.Required, rule(contactOK, "must have 10 or 11 digits"))

	if v.HasErrors() {
		return entity.ClientRecord{}, v.Errors(), common.NewPipelineError(common.KindRecordValidationFailure,
			common.ReasonInvalidRecord, v.ErrorMessage(), v.Error())
	}

	return entity.ClientRecord{
		ID:          id,
		Name:        name,
		DebtAmount:  amount,
		DebtDisplay: money.FormatBRL(amount),
		DueDate:     due,
		Status:      status,
		Contact:     contact,
		Mobile:      mobile,
		Reason:      entity.DefaultReason,
	}, nil, nil
}

// Records validates candidates in order, keeping only fully valid ones.
func Records(cands []entity.Candidate) ([]entity.ClientRecord, []Rejection) {
	accepted := make([]entity.ClientRecord, 0, len(cands))
	var rejected []Rejection
	for i, c := range cands {
		rec, errs, err := Record(c)
		if err != nil {
			rejected = append(rejected, Rejection{Index: i, Errors: errs})
			continue
		}
		accepted = append(accepted, rec)
	}
	return accepted, rejected
}

// ToCandidate converts a record back into candidate form; Record(ToCandidate(r)) == r.
func ToCandidate(r entity.ClientRecord) entity.Candidate {
	return entity.Candidate{
		"id":          r.ID,
		"name":        r.Name,
		"debt_amount": strings.Replace(r.DebtAmount.String(), ".", ",", 1),
		"due_date":    r.DueDate,
		"status":      r.Status,
		"contact":     r.Contact,
	}
}

// Key returns the de-duplication identity of a candidate. Fields are compared in
// normalized form when they normalize, raw otherwise, so "123.456.789-01" and
// "12345678901" collapse.
func Key(c entity.Candidate) entity.RecordKey {
	id, ok := NormalizeID(c.String("id"))
	if !ok {
		id = c.String("id")
	}
	due, ok := NormalizeDueDate(c.String("due_date"))
	if !ok {
		due = c.String("due_date")
	}
	return entity.RecordKey{ID: id, Name: NormalizeName(c.String("name")), DueDate: due}
}
