package llm

import (
	"encoding/json"
	"regexp"

	"github.com/joseph-ayodele/debt-tracker/internal/common"
	"github.com/joseph-ayodele/debt-tracker/internal/entity"
)

var reJSONFence = regexp.MustCompile("(?s)```json[ \\t]*\\r?\\n(.*?)\\r?\\n[ \\t]*```")

// ParseFencedArray locates the first ```json fenced block and decodes it as an array of objects.
// Failures are *common.PipelineError of kind MalformedServiceResponse.
func ParseFencedArray(text string) ([]entity.Candidate, error) {
	m := reJSONFence.FindStringSubmatch(text)
	if m == nil {
		return nil, common.NewPipelineError(common.KindMalformedServiceResponse, common.ReasonNoFence,
			"response has no fenced json block", nil)
	}
	body := []byte(m[1])

	var probe any
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, common.NewPipelineError(common.KindMalformedServiceResponse, common.ReasonBadJSON,
			"fenced block is not valid json", err)
	}
	if err := ValidateJSONAgainstSchema(CandidateArraySchema(), body); err != nil {
		return nil, common.NewPipelineError(common.KindMalformedServiceResponse, common.ReasonNotArray,
			"fenced block is not an array of objects", err)
	}

	var out []entity.Candidate
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, common.NewPipelineError(common.KindMalformedServiceResponse, common.ReasonBadJSON,
			"decode candidates", err)
	}
	return out, nil
}
