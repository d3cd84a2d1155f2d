package gaia

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// StatusOnline is the directory status of a node that accepts requests.
const StatusOnline = "ONLINE"

// Node is one inference endpoint advertised by the directory.
type Node struct {
	Status    string `json:"status"`
	ModelName string `json:"model_name"`
	Subdomain string `json:"subdomain"`
}

// Eligible reports whether the node is online, reachable by name and serves a
// model whose name contains filter, ignoring case.
func (n Node) Eligible(filter string) bool {
	if n.Status != StatusOnline || n.ModelName == "" {
		return false
	}
	if err := validate.Var(n.Subdomain, "required,hostname_rfc1123|hostname_port"); err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(n.ModelName), strings.ToLower(filter))
}

type directoryResponse struct {
	Data *directoryData `json:"data" validate:"required"`
}

type directoryData struct {
	Objects []Node `json:"objects" validate:"required"`
}

// Roles used in chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of the conversation sent to a node.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body posted to /v1/chat/completions.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
	Model    string        `json:"model"`
}

// Choice is one candidate answer.
type Choice struct {
	Message *ChatMessage `json:"message"`
}

// ChatResponse is the subset of the completion response gaiacommit reads.
type ChatResponse struct {
	Choices []Choice `json:"choices" validate:"required"`
}

// Content returns the first choice's text, or "" when there is none.
func (r ChatResponse) Content() string {
	if len(r.Choices) == 0 || r.Choices[0].Message == nil {
		return ""
	}
	return r.Choices[0].Message.Content
}
