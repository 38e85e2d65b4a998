// Package readme drafts a README for a repository by prompting a
// text-generation service.
package readme

import (
	"context"
	"fmt"
	"strings"

	"github.com/kevinmichaelchen/readme-drafter/internal/models"
	"k8s.io/klog/v2"
)

// Completer turns a prompt into generated text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const promptTemplate = `Assume you are a software developer. Analyze the repository at %s and generate a README
with an Overview section, a section describing the technology stack used, and setup and usage instructions,
including prerequisites, installation steps, and example use cases. The technologies used are: %s.
Make sure the information is 100%% correct and do not provide any information that
may not be accurate for the repository. Respond in Markdown.`

// BuildPrompt fills the prompt template. Tags are sorted so the same input
// always yields the same prompt.
func BuildPrompt(repoURL string, techs models.TechSet) string {
	return fmt.Sprintf(promptTemplate, repoURL, strings.Join(techs.Sorted(), ", "))
}

// Title is the final "/"-separated segment of repoURL.
func Title(repoURL string) string {
	parts := strings.Split(repoURL, "/")
	return parts[len(parts)-1]
}

type Generator struct {
	llm Completer
}

func NewGenerator(llm Completer) *Generator {
	return &Generator{llm: llm}
}

// Generate always returns a well-formed document. When the service call
// fails the body is empty and the error is returned alongside it.
func (g *Generator) Generate(ctx context.Context, repoURL string, techs models.TechSet) (*models.Document, error) {
	doc := &models.Document{Title: Title(repoURL)}

	text, err := g.llm.Complete(ctx, BuildPrompt(repoURL, techs))
	if err != nil {
		klog.Warningf("generating README for %s: %v", repoURL, err)
		return doc, fmt.Errorf("generating README: %w", err)
	}

	doc.Body = text
	return doc, nil
}
