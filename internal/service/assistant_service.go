package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"go-duka-pos/internal/repository"
	"go-duka-pos/pkg/gemini"
)

var ErrEmptyPrompt = errors.New("prompt is required")

// AssistantService forwards prompts to the generative-language API with a
// live inventory summary prepended, so answers reflect the actual shop.
type AssistantService interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

type assistantService struct {
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	gemini      *gemini.Client
}

func NewAssistantService(pRepo repository.ProductRepository, sRepo repository.SaleRepository, client *gemini.Client) AssistantService {
	return &assistantService{
		productRepo: pRepo,
		saleRepo:    sRepo,
		gemini:      client,
	}
}

func (s *assistantService) Ask(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	full := fmt.Sprintf("%s\n\nUser asked: %s", s.inventoryContext(), prompt)
	return s.gemini.GenerateContent(ctx, full)
}

// inventoryContext summarizes the store for the model. A failed read
// degrades to a static preamble instead of failing the chat.
func (s *assistantService) inventoryContext() string {
	products, err := s.productRepo.FindAll()
	if err != nil {
		log.Printf("assistant: failed to load products for context: %v", err)
		return "You are Rafiki, the assistant for a point-of-sale system. Live inventory context is unavailable right now."
	}
	salesCount, err := s.saleRepo.Count()
	if err != nil {
		log.Printf("assistant: failed to count sales for context: %v", err)
		salesCount = 0
	}

	var sample []string
	for i, p := range products {
		if i >= 3 {
			break
		}
		sample = append(sample, fmt.Sprintf("%s (stock %s)", p.Name, p.Stock.String()))
	}
	sampleLine := "N/A"
	if len(sample) > 0 {
		sampleLine = strings.Join(sample, ", ")
	}

	return strings.TrimSpace(fmt.Sprintf(`You are Rafiki, the assistant for a point-of-sale system.
- Products in catalog: %d
- Sales recorded: %d
- Example products: %s
You help users understand sales trends, manage inventory, and provide smart insights.`,
		len(products), salesCount, sampleLine))
}
