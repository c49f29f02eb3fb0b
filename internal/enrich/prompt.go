package enrich

import (
	"encoding/json"
	"strings"

	"github.com/shpitdev/vc-enricher/pkg/profile"
)

// DefaultThesis is the investment thesis companies are scored against.
const DefaultThesis = "B2B SaaS companies with technical founders, building developer tools or AI infrastructure, Series A or earlier."

func buildExtractionPrompt(content string) string {
	return `You are a VC analyst assistant. Analyze this company website content and extract structured information.

Return ONLY a valid JSON object. No markdown, no explanation, no code blocks. Just raw JSON.

Format:
{
  "summary": "1-2 sentence description of what the company does and who it serves",
  "whatTheyDo": ["bullet 1", "bullet 2", "bullet 3"],
  "keywords": ["keyword1", "keyword2", "keyword3", "keyword4", "keyword5"],
  "signals": [
    { "text": "Short signal description", "type": "positive", "reasoning": "why this matters to a VC" }
  ]
}

For signals, extract 3-5 signals that a venture capitalist would care about. Examples of good signals:
- "Careers page detected with 12+ open engineering roles" (positive, hiring signal)
- "Pricing page present suggesting commercial traction"
- "Active blog, most recent post within 30 days"
- "Changelog/release notes page found indicating active product development"
- "Enterprise sales motion, 'Contact Sales' CTA prominent"
- "API documentation exists suggesting developer-first product"
- "No public pricing, likely enterprise/sales-led"
Never include generic signals about contact forms, login pages, or standard website elements.
Assign type as "positive" (growth, hiring, traction), "neutral", or "risk".

Website content:
` + content
}

// scoredProfile is the part of a profile shown to the scoring prompt.
type scoredProfile struct {
	Summary    string           `json:"summary"`
	WhatTheyDo []string         `json:"whatTheyDo"`
	Keywords   []string         `json:"keywords"`
	Signals    []profile.Signal `json:"signals"`
	Source     string           `json:"source"`
}

func buildScoringPrompt(thesis string, company profile.Company, p profile.Profile) (string, error) {
	data, err := json.Marshal(scoredProfile{
		Summary:    p.Summary,
		WhatTheyDo: p.WhatTheyDo,
		Keywords:   p.Keywords,
		Signals:    p.Signals,
		Source:     p.Source,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(`
Score this company from 0 to 100 on how well it matches this investment thesis: "`+thesis+`".

Company Name: `+company.Name+`
Description: `+company.Description+`
Enriched Data: `+string(data)+`

Return ONLY a JSON object exactly like this: {"score": 85, "reasoning": "Your reasoning here..."}
Do not use markdown blocks.
`), nil
}
