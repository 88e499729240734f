// internal/api/esg.go
package api

import (
	"net/http"

	"loan-origination/internal/common/validation"
	"loan-origination/internal/esg"
	"loan-origination/internal/submission"
)

type esgHandler struct {
	schemas *validation.Validator
}

func newESGHandler(schemas *validation.Validator) *esgHandler {
	return &esgHandler{schemas: schemas}
}

func (h *esgHandler) Questionnaire(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, esg.DefaultQuestionnaire())
}

type progressResponse struct {
	Answered             int      `json:"answered"`
	Total                int      `json:"total"`
	CompletionPercentage int      `json:"completionPercentage"`
	Complete             bool     `json:"complete"`
	Problems             []string `json:"problems"`
}

// Progress scores a draft without submitting it.
func (h *esgHandler) Progress(w http.ResponseWriter, r *http.Request) {
	var req submission.ESGRequest
	if err := decodeBody(r, h.schemas, schemaESGProgress, &req); err != nil {
		respondError(w, r, err, "")
		return
	}

	a := req.Assessment()
	answered, total := a.Progress()
	problems := a.Validate()
	if problems == nil {
		problems = []string{}
	}
	respondJSON(w, http.StatusOK, progressResponse{
		Answered:             answered,
		Total:                total,
		CompletionPercentage: a.CompletionPercentage(),
		Complete:             a.IsFormComplete() && len(problems) == 0,
		Problems:             problems,
	})
}
