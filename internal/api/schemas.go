// internal/api/schemas.go
package api

import "loan-origination/internal/common/validation"

const (
	schemaStatusUpdate     = "status-update"
	schemaPreloan          = "preloan-application"
	schemaLoanApplication  = "loan-application"
	schemaDocumentUpload   = "document-upload"
	schemaAssetDeclaration = "asset-declaration"
	schemaESG              = "esg-assessment"
	schemaESGProgress      = "esg-progress"
	schemaLoanPlan         = "loan-plan"
)

// Amounts arrive either as numbers or as formatted strings like "₱25,000".
const amount = `{"type": ["number", "string", "null"]}`

var requestSchemas = map[string]string{
	schemaStatusUpdate: `{
		"type": "object",
		"required": ["status"],
		"properties": {
			"status": {"type": "string", "minLength": 1, "maxLength": 64, "pattern": "\\S"},
			"actor": {"type": "string"},
			"reason": {"type": "string"}
		}
	}`,
	schemaPreloan: `{
		"type": "object",
		"properties": {
			"applicationId": {"type": "string"},
			"userId": {"type": "string"},
			"loanAmount": ` + amount + `,
			"loanTerm": ` + amount + `,
			"monthlyIncome": ` + amount + `,
			"loanPurpose": {"type": "string"}
		}
	}`,
	schemaLoanApplication: `{
		"type": "object",
		"properties": {
			"applicationId": {"type": "string"},
			"userId": {"type": "string"},
			"loanAmount": ` + amount + `,
			"personal": {"type": "object"},
			"employment": {"type": "object"},
			"address": {"type": "object"},
			"financial": {"type": "object"}
		}
	}`,
	schemaDocumentUpload: `{
		"type": "object",
		"required": ["applicationId", "fileName"],
		"properties": {
			"applicationId": {"type": "string", "minLength": 1},
			"fileName": {"type": "string", "minLength": 1},
			"fileSize": ` + amount + `
		}
	}`,
	schemaAssetDeclaration: `{
		"type": "object",
		"required": ["applicationId", "assets"],
		"properties": {
			"applicationId": {"type": "string", "minLength": 1},
			"userId": {"type": "string"},
			"assets": {
				"type": "array",
				"minItems": 1,
				"items": {
					"type": "object",
					"properties": {
						"assetType": {"type": "string"},
						"estimatedValue": ` + amount + `,
						"age": ` + amount + `
					}
				}
			}
		}
	}`,
	schemaESG: `{
		"type": "object",
		"required": ["applicationId", "responses"],
		"properties": {
			"applicationId": {"type": "string", "minLength": 1},
			"userId": {"type": "string"},
			"responses": {
				"type": "object",
				"additionalProperties": {"type": "array", "items": {"type": "string"}}
			}
		}
	}`,
	schemaESGProgress: `{
		"type": "object",
		"required": ["responses"],
		"properties": {
			"responses": {
				"type": "object",
				"additionalProperties": {"type": "array", "items": {"type": "string"}}
			}
		}
	}`,
	schemaLoanPlan: `{
		"type": "object",
		"required": ["applicationId", "loanAmount"],
		"properties": {
			"applicationId": {"type": "string", "minLength": 1},
			"loanAmount": ` + amount + `,
			"termMonths": ` + amount + `,
			"interestRate": ` + amount + `,
			"monthlyPayment": ` + amount + `,
			"paymentFrequency": {"type": "string"}
		}
	}`,
}

func newRequestValidator() *validation.Validator {
	v := validation.NewValidator()
	for name, schema := range requestSchemas {
		v.MustRegister(name, schema)
	}
	return v
}
