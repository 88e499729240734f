// internal/models/esg.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ESGCategory holds one questionnaire block. Responses[i] answers Questions[i].
type ESGCategory struct {
	Questions []string `json:"questions"`
	Responses []string `json:"responses"`
}

// Scan reads a jsonb column.
func (c *ESGCategory) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*c = ESGCategory{}
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("esg category: unsupported source type %T", src)
	}
}

func (c ESGCategory) Value() (driver.Value, error) {
	return json.Marshal(c)
}

type ESGAssessment struct {
	ApplicationID        string      `db:"application_id" json:"application_id"`
	Environment          ESGCategory `db:"environment" json:"environment"`
	Social               ESGCategory `db:"social" json:"social"`
	Governance           ESGCategory `db:"governance" json:"governance"`
	Stability1           ESGCategory `db:"stability_1" json:"stability_1"`
	Stability2           ESGCategory `db:"stability_2" json:"stability_2"`
	Stability3           ESGCategory `db:"stability_3" json:"stability_3"`
	CompletionPercentage int         `db:"completion_percentage" json:"completion_percentage"`
	CreatedAt            time.Time   `db:"created_at" json:"created_at"`
}
