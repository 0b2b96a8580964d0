// Package imageedit restyles product photos with a generative model.
package imageedit

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash-image"

var ErrNoImage = errors.New("model returned no image")

// Editor applies a text instruction to an image.
type Editor interface {
	Edit(ctx context.Context, image []byte, mime, instruction string) ([]byte, string, error)
}

// GeminiEditor calls the Gemini API.
type GeminiEditor struct {
	client *genai.Client
	model  string
}

func NewGeminiEditor(ctx context.Context, apiKey, model string) (*GeminiEditor, error) {
	if apiKey == "" {
		return nil, errors.New("image edit api key is empty")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create genai client")
	}
	return &GeminiEditor{client: client, model: model}, nil
}

// Prompt wraps the shop owner's instruction in the styling brief.
func Prompt(instruction string) string {
	return fmt.Sprintf("Edite esta imagem de comida artesanal seguindo este pedido: %s. "+
		"Mantenha o produto principal reconhecível, mas melhore o ambiente e a estética para parecer profissional e apetitoso.",
		strings.TrimSpace(instruction))
}

func (e *GeminiEditor) Edit(ctx context.Context, image []byte, mime, instruction string) ([]byte, string, error) {
	if strings.TrimSpace(instruction) == "" {
		return nil, "", errors.New("edit instruction is empty")
	}
	parts := []*genai.Part{
		genai.NewPartFromBytes(image, mime),
		genai.NewPartFromText(Prompt(instruction)),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := e.client.Models.GenerateContent(ctx, e.model, contents, nil)
	if err != nil {
		zap.L().Error("image edit failed", zap.String("model", e.model), zap.Error(err))
		return nil, "", errors.Wrap(err, "generate content")
	}
	return FirstImage(resp)
}

// FirstImage extracts the first inline image of a response.
func FirstImage(resp *genai.GenerateContentResponse) ([]byte, string, error) {
	if resp == nil {
		return nil, "", ErrNoImage
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if p != nil && p.InlineData != nil && len(p.InlineData.Data) > 0 {
				return p.InlineData.Data, p.InlineData.MIMEType, nil
			}
		}
	}
	return nil, "", ErrNoImage
}
