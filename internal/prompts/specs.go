package prompts

const deepAnalysisSpec = `Respond with a JSON object matching this exact structure:

{
  "purpose": "<what the document is for>",
  "themes": ["<theme1>", "<theme2>"],
  "observations": ["<observation1>"],
  "concerns": ["<concern1>"]
}

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- themes and observations must each contain at least one entry
- concerns may be empty when the document raises none`

const entitySpec = `Respond with a JSON object matching this exact structure:

{
  "entities": [
    {"name": "<entity>", "type": "<person|organization|date|amount|location|other>", "mentions": 1}
  ]
}

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Deduplicate entities; count repeated appearances in mentions
- Use the most complete form of each entity name`

const actionItemSpec = `Respond with a JSON object matching this exact structure:

{
  "items": [
    {"description": "<obligation>", "owner": "<party or empty>", "due": "<date or empty>", "firm": true}
  ]
}

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- firm is true for shall/will/must obligations, false for soft intentions
- Quote obligations closely; do not paraphrase away specifics`

const riskSpec = `Respond with a JSON object matching this exact structure:

{
  "risks": [
    {"description": "<risk>", "severity": "<HIGH|MEDIUM|LOW>", "evidence": "<supporting passage>"}
  ]
}

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- severity reflects plausible impact, not likelihood
- evidence must quote or closely reference the source text`

const summarizationSpec = `Respond with a JSON object matching this exact structure:

{
  "summary": "<executive summary>",
  "key_points": ["<point1>", "<point2>"]
}

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- summary is at most three paragraphs
- key_points are ordered by importance`

const questionAnsweringSpec = `Respond with a JSON object matching this exact structure:

{
  "answer": "<answer grounded in the context passages>",
  "citations": [1, 2]
}

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- citations lists the reference numbers of passages used
- When the context is insufficient, say so in answer and leave citations empty`

var specs = map[Task]string{
	TaskDeepAnalysis:      deepAnalysisSpec,
	TaskEntityExtraction:  entitySpec,
	TaskActionItems:       actionItemSpec,
	TaskRiskAssessment:    riskSpec,
	TaskSummarization:     summarizationSpec,
	TaskQuestionAnswering: questionAnsweringSpec,
}
