package prompt

// defaultText is the built-in pricing prompt. The model is asked for two
// lines so the reply can be split on the TC: and RC: markers.
const defaultText = `Analyze this business confirmation data and provide specific pricing suggestions:
- Material: {{.Material}}
- Treatment Charge: {{.TreatmentCharge}}
- Refining Charge: {{.RefiningCharge}}
- Delivery Point: {{.DeliveryPoint}}

Provide specific market insights and pricing recommendations.
Format your response exactly as:
TC: [specific suggestion with reasoning]
RC: [specific suggestion with reasoning]

Keep each suggestion under 50 words.`
