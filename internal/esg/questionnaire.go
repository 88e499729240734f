// Package esg models the borrower ESG questionnaire and its completeness
// rules. Scoring happens in the workflow engine.
package esg

import (
	"fmt"
	"strconv"
	"strings"

	"loan-origination/internal/models"
)

type Category string

const (
	Environment Category = "environment"
	Social      Category = "social"
	Governance  Category = "governance"
	Stability1  Category = "stability_1"
	Stability2  Category = "stability_2"
	Stability3  Category = "stability_3"
)

// Categories lists every category in questionnaire order.
var Categories = []Category{Environment, Social, Governance, Stability1, Stability2, Stability3}

const (
	LikertMin = 1
	LikertMax = 5
)

// Section is one category of the questionnaire. The first question is
// open-ended; the rest are answered on a 1-5 Likert scale.
type Section struct {
	Category  Category `json:"category"`
	Title     string   `json:"title"`
	Questions []string `json:"questions"`
}

type Questionnaire struct {
	Sections []Section `json:"sections"`
}

// DefaultQuestionnaire returns the questions served to borrowers.
func DefaultQuestionnaire() Questionnaire {
	return Questionnaire{Sections: []Section{
		{Category: Environment, Title: "Environment", Questions: []string{
			"How does your business or work affect the environment around you?",
			"I reduce waste and reuse materials where I can.",
			"I try to save electricity and water in my work.",
			"I avoid products and practices that harm my community's environment.",
		}},
		{Category: Social, Title: "Social", Questions: []string{
			"How does your livelihood support your family or community?",
			"I treat customers, workers and partners fairly.",
			"I support local suppliers and neighbors.",
			"My work provides safe conditions for everyone involved.",
		}},
		{Category: Governance, Title: "Governance", Questions: []string{
			"How do you keep track of your income and expenses?",
			"I keep my personal and business money separate.",
			"I keep my permits, registrations and taxes up to date.",
			"I keep written records of sales and payments.",
		}},
		{Category: Stability1, Title: "Income Stability", Questions: []string{
			"What would you do if your income dropped for a month?",
			"My income is steady from month to month.",
			"I have savings for emergencies.",
		}},
		{Category: Stability2, Title: "Household Support", Questions: []string{
			"Who else depends on or helps with your income?",
			"My household supports my business or work.",
			"I have people I can rely on when I need help.",
		}},
		{Category: Stability3, Title: "Future Outlook", Questions: []string{
			"What do you plan to achieve with this loan?",
			"I am confident I can repay this loan on time.",
			"I have a clear plan for the next twelve months.",
		}},
	}}
}

// Section returns the section for c.
func (q Questionnaire) Section(c Category) (Section, bool) {
	for _, s := range q.Sections {
		if s.Category == c {
			return s, true
		}
	}
	return Section{}, false
}

// Assessment holds a borrower's responses keyed by category. Responses[i]
// answers the section's question i.
type Assessment struct {
	ApplicationID string                `json:"applicationId"`
	Responses     map[Category][]string `json:"responses"`

	questionnaire Questionnaire
}

// NewAssessment starts an empty assessment against q.
func NewAssessment(applicationID string, q Questionnaire) *Assessment {
	return &Assessment{
		ApplicationID: applicationID,
		Responses:     make(map[Category][]string),
		questionnaire: q,
	}
}

// Assess copies responses into a new assessment against q. Unknown
// categories are dropped.
func (q Questionnaire) Assess(applicationID string, responses map[Category][]string) *Assessment {
	a := NewAssessment(applicationID, q)
	for _, s := range q.Sections {
		if resp, ok := responses[s.Category]; ok {
			a.Responses[s.Category] = append([]string(nil), resp...)
		}
	}
	return a
}

// FromRecord rebuilds an assessment from a stored row, using the stored
// questions rather than the current questionnaire.
func FromRecord(rec models.ESGAssessment) *Assessment {
	blocks := map[Category]models.ESGCategory{
		Environment: rec.Environment,
		Social:      rec.Social,
		Governance:  rec.Governance,
		Stability1:  rec.Stability1,
		Stability2:  rec.Stability2,
		Stability3:  rec.Stability3,
	}

	q := Questionnaire{}
	a := &Assessment{ApplicationID: rec.ApplicationID, Responses: make(map[Category][]string)}
	for _, c := range Categories {
		b := blocks[c]
		q.Sections = append(q.Sections, Section{Category: c, Title: string(c), Questions: b.Questions})
		a.Responses[c] = append([]string(nil), b.Responses...)
	}
	a.questionnaire = q
	return a
}

// Questionnaire returns the questions this assessment answers.
func (a *Assessment) Questionnaire() Questionnaire {
	return a.questionnaire
}

// Answer records the response to question i of category c.
func (a *Assessment) Answer(c Category, i int, response string) error {
	s, ok := a.questionnaire.Section(c)
	if !ok {
		return fmt.Errorf("unknown ESG category %q", c)
	}
	if i < 0 || i >= len(s.Questions) {
		return fmt.Errorf("%s has no question %d", c, i)
	}
	resp := a.Responses[c]
	for len(resp) < len(s.Questions) {
		resp = append(resp, "")
	}
	resp[i] = response
	a.Responses[c] = resp
	return nil
}

// Clear removes the response to question i of category c.
func (a *Assessment) Clear(c Category, i int) {
	resp := a.Responses[c]
	if i >= 0 && i < len(resp) {
		resp[i] = ""
	}
}

// Progress counts answered and total questions.
func (a *Assessment) Progress() (answered, total int) {
	for _, s := range a.questionnaire.Sections {
		resp := a.Responses[s.Category]
		for i := range s.Questions {
			total++
			if i < len(resp) && isAnswered(i, resp[i]) {
				answered++
			}
		}
	}
	return answered, total
}

// CompletionPercentage is floor(answered*100/total). An empty questionnaire
// is 0% complete.
func (a *Assessment) CompletionPercentage() int {
	answered, total := a.Progress()
	if total == 0 {
		return 0
	}
	return answered * 100 / total
}

// IsFormComplete reports whether every question has a valid answer.
func (a *Assessment) IsFormComplete() bool {
	answered, total := a.Progress()
	return total > 0 && answered == total
}

// Validate returns one message per answered Likert question whose value is
// outside 1-5. Unanswered questions are not errors here.
func (a *Assessment) Validate() []string {
	var problems []string
	for _, s := range a.questionnaire.Sections {
		resp := a.Responses[s.Category]
		for i := 1; i < len(s.Questions) && i < len(resp); i++ {
			v := strings.TrimSpace(resp[i])
			if v == "" {
				continue
			}
			if _, ok := parseLikert(v); !ok {
				problems = append(problems, fmt.Sprintf("%s question %d: %q is not a rating between %d and %d", s.Category, i+1, v, LikertMin, LikertMax))
			}
		}
		if len(resp) > len(s.Questions) {
			problems = append(problems, fmt.Sprintf("%s: %d responses for %d questions", s.Category, len(resp), len(s.Questions)))
		}
	}
	return problems
}

// Record converts the assessment to its stored form.
func (a *Assessment) Record() models.ESGAssessment {
	block := func(c Category) models.ESGCategory {
		s, _ := a.questionnaire.Section(c)
		resp := make([]string, len(s.Questions))
		copy(resp, a.Responses[c])
		return models.ESGCategory{Questions: append([]string(nil), s.Questions...), Responses: resp}
	}
	return models.ESGAssessment{
		ApplicationID:        a.ApplicationID,
		Environment:          block(Environment),
		Social:               block(Social),
		Governance:           block(Governance),
		Stability1:           block(Stability1),
		Stability2:           block(Stability2),
		Stability3:           block(Stability3),
		CompletionPercentage: a.CompletionPercentage(),
	}
}

func isAnswered(i int, response string) bool {
	v := strings.TrimSpace(response)
	if i == 0 {
		return v != ""
	}
	_, ok := parseLikert(v)
	return ok
}

func parseLikert(v string) (int, bool) {
	n, err := strconv.Atoi(v)
	if err != nil || n < LikertMin || n > LikertMax {
		return 0, false
	}
	return n, true
}
