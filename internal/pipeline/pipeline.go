package pipeline

import (
	"context"
	"fmt"

	"github.com/kevinmichaelchen/readme-drafter/internal/config"
	"github.com/kevinmichaelchen/readme-drafter/internal/github"
	"github.com/kevinmichaelchen/readme-drafter/internal/llm"
	"github.com/kevinmichaelchen/readme-drafter/internal/models"
	"github.com/kevinmichaelchen/readme-drafter/internal/readme"
	"github.com/kevinmichaelchen/readme-drafter/internal/session"
	"github.com/kevinmichaelchen/readme-drafter/internal/techdetect"
	"k8s.io/klog/v2"
)

// RepoSource opens a repository for listing.
type RepoSource interface {
	Open(ctx context.Context, ref models.RepoRef) (techdetect.Lister, error)
}

// Factories build the external clients from per-request credentials.
type Factories struct {
	RepoSource func(token string) (RepoSource, error)
	Completer  func(apiKey string) readme.Completer
}

// GitHubFactories wires the real GitHub and LLM clients from cfg.
func GitHubFactories(cfg *config.Config) Factories {
	return Factories{
		RepoSource: func(token string) (RepoSource, error) {
			c, err := github.NewClient(token, cfg.GitHubBaseURL, cfg.GitHubTimeout)
			if err != nil {
				return nil, err
			}
			return githubSource{c}, nil
		},
		Completer: func(apiKey string) readme.Completer {
			return llm.NewClient(cfg.LLMBaseURL, apiKey, cfg.LLMModel, cfg.LLMTimeout)
		},
	}
}

type githubSource struct {
	client *github.Client
}

func (s githubSource) Open(ctx context.Context, ref models.RepoRef) (techdetect.Lister, error) {
	repo, err := s.client.GetRepository(ctx, ref)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

type Pipeline struct {
	factories Factories
	extractor *techdetect.Extractor
}

func New(factories Factories, technologies map[string]string) *Pipeline {
	return &Pipeline{
		factories: factories,
		extractor: techdetect.New(technologies),
	}
}

type Result struct {
	Ref          models.RepoRef
	Technologies models.TechSet
	Document     *models.Document
	State        State

	// GenerationFault is set when the model call failed; Document then
	// has an empty body.
	GenerationFault *Fault
}

// Run drafts a README for repoURL. Any returned error is a *Fault.
func (p *Pipeline) Run(ctx context.Context, creds session.Credentials, repoURL string) (*Result, error) {
	if err := creds.Validate(); err != nil {
		return nil, newFault(KindMissingCredentials, StateIdle, err)
	}

	transition(StateResolving, repoURL)
	ref, err := github.Resolve(repoURL)
	if err != nil {
		return nil, newFault(KindInvalidRepositoryURL, StateResolveFailed, err)
	}

	transition(StateExtractingTech, repoURL)
	techs, err := p.extract(ctx, creds.RepoAPIToken, ref)
	if err != nil {
		return nil, newFault(KindRepositoryAccess, StateRepositoryAccessFailed, err)
	}

	transition(StateGenerating, repoURL)
	gen := readme.NewGenerator(p.factories.Completer(creds.ModelAPIKey))
	doc, err := gen.Generate(ctx, repoURL, techs)

	res := &Result{
		Ref:          ref,
		Technologies: techs,
		Document:     doc,
		State:        StateDone,
	}
	if err != nil {
		res.State = StateGenerationFailed
		res.GenerationFault = newFault(KindGeneration, StateGenerationFailed, err)
	}
	transition(res.State, repoURL)
	return res, nil
}

func (p *Pipeline) extract(ctx context.Context, token string, ref models.RepoRef) (models.TechSet, error) {
	src, err := p.factories.RepoSource(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", github.ErrRepositoryAccess, err)
	}
	repo, err := src.Open(ctx, ref)
	if err != nil {
		return nil, err
	}
	return p.extractor.Extract(ctx, repo)
}

func transition(s State, repoURL string) {
	klog.V(2).Infof("%s: %s", repoURL, s)
}
