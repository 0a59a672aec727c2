package detectintent

// Input carries the raw message to classify.
type Input struct {
	Message string `json:"message"`
}

// Output is the classification result without any action execution.
// Workflows use it to branch before deciding whether to run a command.
type Output struct {
	Intent     string                 `json:"intent"`
	Confidence float64                `json:"confidence"`
	Entities   map[string]interface{} `json:"entities"`
}

func (o *Output) ToVariables() map[string]interface{} {
	return map[string]interface{}{
		"detectedIntent":     o.Intent,
		"detectedConfidence": o.Confidence,
		"detectedEntities":   o.Entities,
	}
}
