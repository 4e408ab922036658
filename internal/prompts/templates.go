package prompts

import (
	"github.com/caseflow/caseflow/backend/internal/validator"
	"github.com/caseflow/caseflow/backend/pkg/models"
)

// The six operation templates. Prompt texts use {{placeholder}}
// variables filled from the orchestrator's invocation context; the
// output-format instruction is appended at render time from the schema.

var summaryTemplate = &Template{
	ID:      models.OpGenerateSummary,
	Version: 2,
	Text: `You are an assistant for government case workers. Write a concise
overall summary of the following case for a colleague taking it over.

Case ID: {{case_id}}
Title: {{title}}
Application type: {{application_type}}
Status: {{status}}
Current step: {{current_step}}
Applicant: {{applicant_name}} ({{applicant_email}})
Documents on file: {{documents}}
Case notes: {{notes}}

Summarize the state of the case in plain language, then list concrete
recommendations for the next case worker. Include a confidence value
reflecting how well the available information supports the summary.`,
	Parameters: models.InvocationParameters{Temperature: 0.7, MaxOutputTokens: 1024},
	Schema: validator.Schema{Fields: []validator.FieldSpec{
		{Name: "content", Kind: validator.KindString, Required: true},
		{Name: "recommendations", Kind: validator.KindStringArray, Required: true, NonEmpty: true},
		{Name: "confidence", Kind: validator.KindNumber, Required: true, Min: validator.Bound(0), Max: validator.Bound(1)},
	}},
}

var recommendStepTemplate = &Template{
	ID:      models.OpRecommendStep,
	Version: 1,
	Text: `You are an assistant for government case workers. The case below is at
the step "{{step}}". Recommend what the case worker should do next for
this step.

Case ID: {{case_id}}
Title: {{title}}
Application type: {{application_type}}
Status: {{status}}
Applicant: {{applicant_name}}
Documents on file: {{documents}}
Case notes: {{notes}}

Give actionable recommendations, a priority for acting on them, and a
confidence value.`,
	Parameters: models.InvocationParameters{Temperature: 0.5, MaxOutputTokens: 512},
	Schema: validator.Schema{Fields: []validator.FieldSpec{
		{Name: "recommendations", Kind: validator.KindStringArray, Required: true, NonEmpty: true},
		{Name: "priority", Kind: validator.KindString, Required: true, Enum: []string{"low", "medium", "high"}},
		{Name: "confidence", Kind: validator.KindNumber, Required: true, Min: validator.Bound(0), Max: validator.Bound(1)},
	}},
}

var analyzeApplicationTemplate = &Template{
	ID:      models.OpAnalyzeApplication,
	Version: 2,
	Text: `You are an assistant for government case workers. Analyze the
following application in depth.

Application ID: {{application_id}}
Case ID: {{case_id}}
Status: {{status}}
Form fields: {{fields}}
Steps: {{steps}}
Documents on file: {{documents}}

Produce a short summary, the key points a reviewer must know, potential
issues that could delay or block processing, recommended actions, a
priority level, an estimated processing time (e.g. "3-5 business days"),
and any documents still required.`,
	Parameters: models.InvocationParameters{Temperature: 0.4, MaxOutputTokens: 2048},
	Schema: validator.Schema{Fields: []validator.FieldSpec{
		{Name: "summary", Kind: validator.KindString, Required: true},
		{Name: "keyPoints", Kind: validator.KindStringArray, Required: true, NonEmpty: true},
		{Name: "potentialIssues", Kind: validator.KindStringArray, Required: true},
		{Name: "recommendedActions", Kind: validator.KindStringArray, Required: true, NonEmpty: true},
		{Name: "priorityLevel", Kind: validator.KindString, Required: true, Enum: []string{"low", "medium", "high", "urgent"}},
		{Name: "estimatedProcessingTime", Kind: validator.KindString, Required: true},
		{Name: "requiredDocuments", Kind: validator.KindStringArray, Required: true},
	}},
}

var finalSummaryTemplate = &Template{
	ID:      models.OpGenerateFinalSummary,
	Version: 1,
	Text: `You are an assistant for government case workers. The case below is
being closed. Write the final summary that will be archived with it.

Case ID: {{case_id}}
Title: {{title}}
Application type: {{application_type}}
Status: {{status}}
Applicant: {{applicant_name}}
Documents on file: {{documents}}
Case notes: {{notes}}

Cover what was requested, what was decided, and anything a future
reader should know. Add follow-up recommendations if any remain, and a
confidence value.`,
	Parameters: models.InvocationParameters{Temperature: 0.7, MaxOutputTokens: 1024},
	Schema: validator.Schema{Fields: []validator.FieldSpec{
		{Name: "content", Kind: validator.KindString, Required: true},
		{Name: "recommendations", Kind: validator.KindStringArray, Required: true},
		{Name: "confidence", Kind: validator.KindNumber, Required: true, Min: validator.Bound(0), Max: validator.Bound(1)},
	}},
}

var completenessTemplate = &Template{
	ID:      models.OpValidateCompleteness,
	Version: 1,
	Text: `You are an assistant for government case workers. Check whether the
following application is complete and ready for submission.

Application ID: {{application_id}}
Case ID: {{case_id}}
Status: {{status}}
Form fields: {{fields}}
Steps: {{steps}}
Documents on file: {{documents}}

Report whether it is complete, which steps and documents are missing,
recommendations for completing it, and a confidence value.`,
	Parameters: models.InvocationParameters{Temperature: 0.2, MaxOutputTokens: 1024},
	Schema: validator.Schema{Fields: []validator.FieldSpec{
		{Name: "isComplete", Kind: validator.KindBool, Required: true},
		{Name: "missingSteps", Kind: validator.KindStringArray, Required: true},
		{Name: "missingDocuments", Kind: validator.KindStringArray, Required: true},
		{Name: "recommendations", Kind: validator.KindStringArray, Required: true},
		{Name: "confidence", Kind: validator.KindNumber, Required: true, Min: validator.Bound(0), Max: validator.Bound(1)},
	}},
}

var missingFieldsTemplate = &Template{
	ID:      models.OpDetectMissingFields,
	Version: 1,
	Text: `You are an assistant for government case workers. Identify which
fields of the following application are missing or incomplete.

Application ID: {{application_id}}
Case ID: {{case_id}}
Status: {{status}}
Form fields: {{fields}}
Steps: {{steps}}
Documents on file: {{documents}}

For every missing or incomplete field report its name, its type, how
important it is, and what the applicant should do. Also give an overall
completeness score, the highest-priority actions, and an estimated time
to complete the application (e.g. "about 20 minutes").`,
	Parameters: models.InvocationParameters{Temperature: 0.2, MaxOutputTokens: 1024},
	Schema: validator.Schema{Fields: []validator.FieldSpec{
		{Name: "missingFields", Kind: validator.KindObjectArray, Required: true, Object: &validator.Schema{Fields: []validator.FieldSpec{
			{Name: "fieldName", Kind: validator.KindString, Required: true},
			{Name: "fieldType", Kind: validator.KindString, Required: true},
			{Name: "importance", Kind: validator.KindString, Required: true, Enum: []string{"required", "recommended", "optional"}},
			{Name: "suggestedAction", Kind: validator.KindString, Required: true},
		}}},
		{Name: "completenessScore", Kind: validator.KindNumber, Required: true, Min: validator.Bound(0), Max: validator.Bound(1)},
		{Name: "priorityActions", Kind: validator.KindStringArray, Required: true},
		{Name: "estimatedCompletionTime", Kind: validator.KindString, Required: true},
	}},
}
