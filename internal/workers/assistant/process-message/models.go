package processmessage

import "bazaar-workers/internal/agent/router"

// Input carries one chat message from a process instance. SessionID keys
// the conversational context; when empty it falls back to the process
// instance so multi-turn clarification still works inside one workflow.
type Input struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// Output is the interpreted and executed command result.
type Output struct {
	Response *router.Response
}

// ToVariables flattens the response into process variables. The headline
// fields are lifted to the top level so gateways can branch on them
// without digging into the nested response document.
func (o *Output) ToVariables() map[string]interface{} {
	resp := o.Response
	return map[string]interface{}{
		"assistantIntent":     resp.Intent,
		"assistantConfidence": resp.Confidence,
		"assistantStatus":     resp.ActionResult.Status,
		"assistantMessage":    resp.ActionResult.Message,
		"assistantResponse":   resp,
	}
}
