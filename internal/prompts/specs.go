package prompts

const classifySpec = `Respond with a JSON object matching this exact structure:

{
  "disease_name": "<label>",
  "confidence": 0.0,
  "visual_symptoms": "<observations>",
  "preliminary_reasoning": "<explanation>"
}

Field constraints:
- disease_name: Exactly one name from the possible diseases listed for the
  current crop, case-sensitive, or one of these fixed labels:
  "Invalid Image - Not a Plant Leaf" when any image is not a leaf of a plant,
  "Invalid Image - Wrong Crop Type" when the leaves belong to another crop,
  "Uncertain - Need Better Images" when the images are too unclear to judge.
  Healthy leaves use "<crop> Healthy", for example "Tomato Healthy".
  Never invent or modify disease names.
- confidence: Number between 0.0 and 1.0. Use 0.0 for invalid images.
- visual_symptoms: The specific observations, or "Invalid image detected".
- preliminary_reasoning: Why the symptoms indicate this label, or why the
  images were rejected.

Return only valid JSON.`

const verifySpec = `Decision policy:

CONFIRM (is_match true) when:
- 3 or more of the 6 criteria match closely
- the core visual symptoms are similar, allowing minor variations
- differences are explainable by disease stage, lighting, or image quality
- the weather supports the disease or is neutral

REJECT (is_match false) only when:
- the lesion color is drastically different, not just a shade variation
- the texture is completely opposite, for example fuzzy versus smooth
- the symptoms are entirely different from the reference
- the weather strongly contradicts the disease, for example bone-dry
  weather for a water-mold disease

Respond with a JSON object matching this exact structure:

{
  "is_match": true,
  "reasoning": "<2-3 sentences comparing specific symptoms>",
  "confidence": 0.0,
  "key_similarities": ["<match>"],
  "key_differences": ["<difference>"],
  "verdict": "CONFIRMED",
  "alternative_diagnosis": "<label or Unknown>"
}

Field constraints:
- is_match: true only when the decision policy confirms the match.
- confidence: 0.9 or above when confirmed, below 0.7 when rejected.
- verdict: "CONFIRMED" when is_match is true, otherwise "REJECTED".
- alternative_diagnosis: A disease from the same crop when rejected,
  otherwise "Unknown".

Return only valid JSON.`

const chatSpec = `Response constraints:
- Plain text only, no JSON and no markdown headings
- Two to four sentences
- Ground every claim in the diagnosis context; when no disease was
  confirmed, say so and do not name treatments for a specific disease`

var specs = map[Stage]string{
	StageClassify: classifySpec,
	StageVerify:   verifySpec,
	StageChat:     chatSpec,
}

// Spec returns the immutable output specification for a stage.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
