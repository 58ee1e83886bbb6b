// Package router picks the response strategy for an inbound message: a
// structured product lookup, a fast knowledge-base snippet, or the full agent
// pipeline. The fast paths answer from data the service already holds and
// keep the LLM out of the loop entirely.
package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/beforest/forest-guide/internal/common/logger"
)

// Path identifies which strategy produced the answer.
type Path string

const (
	PathProducts  Path = "products"
	PathKnowledge Path = "knowledge"
	PathPipeline  Path = "pipeline"
)

// Product is a structured catalog row supplied by the product store.
type Product struct {
	Name         string
	Category     string
	Availability string
	PriceText    string
}

// KnowledgeRow is a snippet supplied by the knowledge store.
type KnowledgeRow struct {
	Title    string
	URL      string
	Content  string
	Category string
}

// ProductCatalog looks up catalog rows for a brand.
type ProductCatalog interface {
	LookupByBrand(ctx context.Context, brand string, limit int) ([]Product, error)
}

// KnowledgeSearcher searches the knowledge base.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]KnowledgeRow, error)
}

// AgentPipeline runs the full multi-agent research-and-write pipeline.
type AgentPipeline interface {
	Run(ctx context.Context, message, conversationID, displayName string) (string, error)
}

// Request carries what the router needs from the inbound message.
type Request struct {
	Text           string
	ConversationID string
	DisplayName    string
}

const (
	productLookupLimit = 12
	knowledgeLimit     = 3
	knowledgeClip      = 220

	maxSummaryCategories = 5
	maxSummaryNames      = 6
)

const (
	productClosing   = "Tell me what you're after and I can narrow it down."
	knowledgeClosing = "Want me to go deeper on any of this?"
)

// Brands with structured catalog data, checked in order.
var catalogBrands = []string{"bewild", "beforest"}

var productKeywords = []string{
	"product", "products", "catalog", "catalogue", "price list",
	"buy", "shop", "order", "stock", "available",
	"infusion", "honey", "coffee", "rice", "oil",
}

// Any brand surface counts for the knowledge fast path.
var brandTerms = []string{"beforest", "bewild", "bewildproduce", "hospitality", "experiences", "10percent"}

var informationalKeywords = []string{"what", "how", "tell me", "details", "info", "learn", "about", "know more"}

type Router struct {
	products  ProductCatalog
	knowledge KnowledgeSearcher
	pipeline  AgentPipeline
	logger    logger.Logger
}

func New(products ProductCatalog, knowledge KnowledgeSearcher, pipeline AgentPipeline, log logger.Logger) *Router {
	return &Router{
		products:  products,
		knowledge: knowledge,
		pipeline:  pipeline,
		logger:    log.WithFields(map[string]interface{}{"component": "router"}),
	}
}

// Route answers the message via the first applicable strategy. Fast-path
// misses (no usable data, or a failed lookup) fall through to the pipeline;
// only pipeline errors reach the caller, which maps them to the placeholder
// reply.
func (r *Router) Route(ctx context.Context, req Request) (string, Path, error) {
	lower := strings.ToLower(req.Text)

	// A triggered-but-empty product path skips the knowledge path entirely
	// and goes straight to the pipeline.
	if brand, ok := detectCatalogBrand(lower); ok && containsAny(lower, productKeywords) {
		if answer, ok := r.tryProductSummary(ctx, brand); ok {
			return answer, PathProducts, nil
		}
	} else if containsAny(lower, brandTerms) && containsAny(lower, informationalKeywords) {
		if answer, ok := r.tryKnowledgeSnippet(ctx, req.Text); ok {
			return answer, PathKnowledge, nil
		}
	}

	answer, err := r.pipeline.Run(ctx, req.Text, req.ConversationID, req.DisplayName)
	if err != nil {
		return "", PathPipeline, err
	}
	return answer, PathPipeline, nil
}

// tryProductSummary answers from the structured catalog. Absence of usable
// rows signals fall-through, not failure.
func (r *Router) tryProductSummary(ctx context.Context, brand string) (string, bool) {
	rows, err := r.products.LookupByBrand(ctx, brand, productLookupLimit)
	if err != nil {
		r.logger.Warn("product lookup failed, falling through", map[string]interface{}{
			"brand": brand,
			"error": err.Error(),
		})
		return "", false
	}

	categories := make([]string, 0, maxSummaryCategories)
	names := make([]string, 0, maxSummaryNames)
	seenCategories := make(map[string]bool)
	seenNames := make(map[string]bool)

	for _, p := range rows {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		if key := strings.ToLower(name); !seenNames[key] && len(names) < maxSummaryNames {
			seenNames[key] = true
			names = append(names, name)
		}
		category := strings.TrimSpace(p.Category)
		if category == "" {
			continue
		}
		if key := strings.ToLower(category); !seenCategories[key] && len(categories) < maxSummaryCategories {
			seenCategories[key] = true
			categories = append(categories, category)
		}
	}

	if len(names) == 0 {
		return "", false
	}

	var b strings.Builder
	if len(categories) > 0 {
		fmt.Fprintf(&b, "%s's current range covers %s - including %s.",
			displayBrand(brand), strings.Join(categories, ", "), strings.Join(names, ", "))
	} else {
		fmt.Fprintf(&b, "%s currently offers %s.", displayBrand(brand), strings.Join(names, ", "))
	}
	b.WriteString(" ")
	b.WriteString(productClosing)

	return b.String(), true
}

// tryKnowledgeSnippet answers from the top knowledge rows. Absence of usable
// content signals fall-through.
func (r *Router) tryKnowledgeSnippet(ctx context.Context, query string) (string, bool) {
	rows, err := r.knowledge.Search(ctx, query, knowledgeLimit)
	if err != nil {
		r.logger.Warn("knowledge search failed, falling through", map[string]interface{}{
			"error": err.Error(),
		})
		return "", false
	}

	var content string
	for _, row := range rows {
		if c := strings.TrimSpace(row.Content); c != "" {
			content = c
			break
		}
	}
	if content == "" {
		return "", false
	}

	titles := make([]string, 0, knowledgeLimit)
	seen := make(map[string]bool)
	for _, row := range rows {
		title := strings.TrimSpace(row.Title)
		if title == "" {
			continue
		}
		if key := strings.ToLower(title); !seen[key] && len(titles) < 3 {
			seen[key] = true
			titles = append(titles, title)
		}
	}

	if runes := []rune(content); len(runes) > knowledgeClip {
		content = strings.TrimSpace(string(runes[:knowledgeClip]))
	}

	var b strings.Builder
	if len(titles) > 0 {
		fmt.Fprintf(&b, "From %s: ", strings.Join(titles, ", "))
	}
	b.WriteString(content)
	b.WriteString(" ")
	b.WriteString(knowledgeClosing)

	return b.String(), true
}

func detectCatalogBrand(lower string) (string, bool) {
	for _, brand := range catalogBrands {
		if strings.Contains(lower, brand) {
			return brand, true
		}
	}
	return "", false
}

func displayBrand(brand string) string {
	if brand == "" {
		return brand
	}
	return strings.ToUpper(brand[:1]) + brand[1:]
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
