// Package ai is the dashboard's Gemini assistant. It answers questions about
// the dealership by calling tools over the registry.
package ai

import (
	"context"
	"fmt"
	"log"

	"ev-dealer-hub/internal/dealership"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	modelName = "gemini-2.0-flash-001"
	// maxToolRounds bounds how many times one question may go back to the tools.
	maxToolRounds = 5
)

// Agent talks to Gemini with one API key. It satisfies handlers.Assistant.
type Agent struct {
	apiKey string
	reg    *dealership.Registry
}

func NewAgent(apiKey string, reg *dealership.Registry) *Agent {
	return &Agent{apiKey: apiKey, reg: reg}
}

func systemPrompt(today string, sess dealership.Session) string {
	return fmt.Sprintf(`SYSTEM: Today is %s. You are the assistant of an electric vehicle dealer network.
You are talking to %s (role: %s). Amounts are in VND.

RULES:
1. UPDATE: If a user asks to change a vehicle price by NAME (e.g. "Set the Model 3 to 1.6 billion"), you must NOT ask them for the ID. Instead:
   - Call 'check_inventory' to find the ID.
   - Call 'update_vehicle_price' using that ID.

2. READ: If a user asks for PRICE, STOCK, or DETAILS of a vehicle:
   - You MUST call 'check_inventory' and read the result to answer.
   - Do NOT say "I cannot get the price". You CAN get it by checking inventory.

3. SALES: If the user asks for sales/revenue, use 'get_revenue_report'.

4. DEBTS: If the user asks who is late paying, use 'list_overdue_debts'.

5. If a tool returns an "error", explain it to the user instead of retrying blindly.`,
		today, sess.Username, sess.Role)
}

// Ask runs one question to completion, executing tool calls as sess.
func (a *Agent) Ask(ctx context.Context, sess dealership.Session, message string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(a.apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt(a.reg.Now().Format("2006-01-02"), sess))},
	}

	// --- DEFINE TOOLS ---
	model.Tools = []*genai.Tool{{FunctionDeclarations: declarations}}

	chat := model.StartChat()
	resp, err := chat.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", err
	}

	// --- HANDLE TOOL CALLS ---
	tools := &toolbox{reg: a.reg, sess: sess}
	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			break
		}
		replies := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			log.Printf("🤖 %s called %s", sess.Username, call.Name)
			replies = append(replies, genai.FunctionResponse{
				Name:     call.Name,
				Response: tools.run(ctx, call.Name, call.Args),
			})
		}
		resp, err = chat.SendMessage(ctx, replies...)
		if err != nil {
			return "", err
		}
	}

	return printResponse(resp), nil
}

// --- HELPER FUNCTIONS ---

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	var calls []genai.FunctionCall
	for _, part := range parts(resp) {
		if call, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, call)
		}
	}
	return calls
}

func printResponse(resp *genai.GenerateContentResponse) string {
	for _, part := range parts(resp) {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}

func parts(resp *genai.GenerateContentResponse) []genai.Part {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	return resp.Candidates[0].Content.Parts
}
