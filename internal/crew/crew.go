// Package crew runs the full multi-agent answer pipeline: a research stage
// that gathers knowledge-base and web findings, a memory stage that condenses
// recent conversation history, and a crafting stage that writes the final
// brand-voiced reply. Stages run sequentially; each feeds the next.
package crew

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/beforest/forest-guide/internal/common/logger"
	"github.com/beforest/forest-guide/internal/pipeline/router"
	"github.com/beforest/forest-guide/internal/websearch"
)

const (
	knowledgeResultLimit = 3
	webResultLimit       = 3
	historyLimit         = 5
)

// Turn is one prior exchange line fed to the memory stage.
type Turn struct {
	Role string // "user" or "assistant"
	Text string
}

// ChatClient is the slice of the OpenAI API the crew uses.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// KnowledgeSearcher supplies knowledge-base rows to the research stage.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]router.KnowledgeRow, error)
}

// WebSearcher supplies public-web results to the research stage.
type WebSearcher interface {
	Search(ctx context.Context, query string, count int) ([]websearch.Result, error)
}

// HistoryProvider supplies recent conversation turns to the memory stage.
type HistoryProvider interface {
	Recent(ctx context.Context, conversationID string, limit int) ([]Turn, error)
}

const researchSystemPrompt = `You are a researcher for Beforest, a collective
farming company in India with four collectives and the Bewild produce brand.
Given a member question and raw source material, extract only the facts that
answer the question. If the sources say nothing relevant, say so plainly.
Output a short factual brief, no prose flourishes.`

const memorySystemPrompt = `You summarize a short Instagram conversation so a
colleague can pick it up. Capture what the person asked about, anything they
were promised, and their apparent interest level. Three sentences maximum.`

const craftSystemPrompt = `You are Forest Guide, Beforest's Instagram voice.
Write like a knowledgeable friend: warm, direct, specific. One to three short
sentences. Never mention research, sources, documents, or being an assistant.
If the brief has no relevant facts, say you don't have that detail on hand and
offer to connect them with the team.`

// Crew wires the three stages over one chat-completion backend.
type Crew struct {
	llm       ChatClient
	model     string
	knowledge KnowledgeSearcher
	web       WebSearcher
	history   HistoryProvider
	logger    logger.Logger
}

func New(llm ChatClient, model string, knowledge KnowledgeSearcher, web WebSearcher, history HistoryProvider, log logger.Logger) *Crew {
	return &Crew{
		llm:       llm,
		model:     model,
		knowledge: knowledge,
		web:       web,
		history:   history,
		logger:    log.WithFields(map[string]interface{}{"component": "crew"}),
	}
}

// Run produces the final reply text. Research-source and memory failures
// degrade to empty sections; only chat-completion failures propagate.
func (c *Crew) Run(ctx context.Context, message, conversationID, displayName string) (string, error) {
	brief, err := c.research(ctx, message)
	if err != nil {
		return "", fmt.Errorf("research stage: %w", err)
	}

	memory := c.rememberConversation(ctx, conversationID)

	return c.craftReply(ctx, message, displayName, brief, memory)
}

func (c *Crew) research(ctx context.Context, message string) (string, error) {
	var sources strings.Builder

	if rows, err := c.knowledge.Search(ctx, message, knowledgeResultLimit); err != nil {
		c.logger.Warn("knowledge lookup failed, researching without it", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		for _, row := range rows {
			fmt.Fprintf(&sources, "[kb] %s: %s\n", row.Title, row.Content)
		}
	}

	if results, err := c.web.Search(ctx, message, webResultLimit); err != nil {
		c.logger.Warn("web search failed, researching without it", map[string]interface{}{
			"error": err.Error(),
		})
	} else if formatted := websearch.FormatResults(results); formatted != "" {
		sources.WriteString("[web]\n")
		sources.WriteString(formatted)
		sources.WriteString("\n")
	}

	if sources.Len() == 0 {
		return "No source material found for this question.", nil
	}

	prompt := fmt.Sprintf("Question: %s\n\nSources:\n%s", message, sources.String())
	return c.complete(ctx, researchSystemPrompt, prompt)
}

// rememberConversation condenses recent history. Any failure here just means
// the reply is written without conversational context.
func (c *Crew) rememberConversation(ctx context.Context, conversationID string) string {
	if conversationID == "" {
		return ""
	}

	turns, err := c.history.Recent(ctx, conversationID, historyLimit)
	if err != nil {
		c.logger.Warn("history load failed, replying without memory", map[string]interface{}{
			"conversation_id": conversationID,
			"error":           err.Error(),
		})
		return ""
	}
	if len(turns) == 0 {
		return ""
	}

	var transcript strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&transcript, "%s: %s\n", t.Role, t.Text)
	}

	summary, err := c.complete(ctx, memorySystemPrompt, transcript.String())
	if err != nil {
		c.logger.Warn("memory stage failed, replying without memory", map[string]interface{}{
			"conversation_id": conversationID,
			"error":           err.Error(),
		})
		return ""
	}
	return summary
}

func (c *Crew) craftReply(ctx context.Context, message, displayName, brief, memory string) (string, error) {
	var prompt strings.Builder
	if displayName != "" {
		fmt.Fprintf(&prompt, "The person's name is %s.\n", displayName)
	}
	if memory != "" {
		fmt.Fprintf(&prompt, "Conversation so far: %s\n", memory)
	}
	fmt.Fprintf(&prompt, "Research brief: %s\n\nTheir message: %s", brief, message)

	reply, err := c.complete(ctx, craftSystemPrompt, prompt.String())
	if err != nil {
		return "", fmt.Errorf("craft stage: %w", err)
	}
	return reply, nil
}

func (c *Crew) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
