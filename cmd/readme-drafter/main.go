package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kevinmichaelchen/readme-drafter/internal/config"
	"github.com/kevinmichaelchen/readme-drafter/internal/github"
	"github.com/kevinmichaelchen/readme-drafter/internal/pipeline"
	"github.com/kevinmichaelchen/readme-drafter/internal/server"
	"github.com/kevinmichaelchen/readme-drafter/internal/session"
	"github.com/kevinmichaelchen/readme-drafter/internal/techdetect"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

func main() {
	root := &cobra.Command{
		Use:           "readme-drafter",
		Short:         "Draft a README for a GitHub repository with an LLM",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	fs := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(fs)
	root.PersistentFlags().AddGoFlagSet(fs)

	root.AddCommand(serveCmd(), generateCmd(), techsCmd())

	err := root.Execute()
	klog.Flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if addr != "" {
				cfg.Server.Addr = addr
			}

			var seed session.Credentials
			if cfg.Server.SeedCredentials {
				seed = session.Credentials{ModelAPIKey: cfg.LLMAPIKey, RepoAPIToken: cfg.GitHubToken}
			}
			store := session.NewStore(seed)
			p := pipeline.New(pipeline.GitHubFactories(cfg), cfg.Technologies)

			r := server.Setup(server.Options{Mode: cfg.Server.Mode}, store, p)
			klog.Infof("listening on %s (model %s, %d recognized suffixes, seeded credentials: %t)",
				cfg.Server.Addr, cfg.LLMModel, len(cfg.Technologies), cfg.Server.SeedCredentials)
			return r.Run(cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides LISTEN_ADDR)")
	return cmd
}

func generateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate [repo-url]",
		Short: "Draft a README using credentials from the environment and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			creds := session.Credentials{ModelAPIKey: cfg.LLMAPIKey, RepoAPIToken: cfg.GitHubToken}

			p := pipeline.New(pipeline.GitHubFactories(cfg), cfg.Technologies)
			res, err := p.Run(context.Background(), creds, args[0])
			if err != nil {
				var f *pipeline.Fault
				if errors.As(err, &f) {
					klog.V(1).Infof("%v", f)
					return errors.New(f.UserMessage())
				}
				return err
			}

			if res.GenerationFault != nil {
				fmt.Fprintf(os.Stderr, "WARN: %s (%v)\n", res.GenerationFault.UserMessage(), res.GenerationFault.Err)
			}
			fmt.Println(res.Document.Markdown())
			return nil
		},
	}
}

func techsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "techs [repo-url]",
		Short: "Print the technology tags detected for a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg := config.Load()

			ref, err := github.Resolve(args[0])
			if err != nil {
				return err
			}
			if cfg.GitHubToken == "" {
				klog.Warning("GITHUB_TOKEN is not set; using unauthenticated requests")
			}

			gh, err := github.NewClient(cfg.GitHubToken, cfg.GitHubBaseURL, cfg.GitHubTimeout)
			if err != nil {
				return err
			}
			repo, err := gh.GetRepository(ctx, ref)
			if err != nil {
				return err
			}
			techs, err := techdetect.New(cfg.Technologies).Extract(ctx, repo)
			if err != nil {
				return err
			}

			if len(techs) == 0 {
				fmt.Println("No recognized technologies")
				return nil
			}
			fmt.Println(strings.Join(techs.Sorted(), ", "))
			return nil
		},
	}
}
