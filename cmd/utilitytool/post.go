package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inecosys/utilitytool/internal/config"
	"github.com/inecosys/utilitytool/pkg/client"
	"github.com/inecosys/utilitytool/pkg/drafting"
	"github.com/inecosys/utilitytool/pkg/llamacpp"
	"github.com/inecosys/utilitytool/pkg/ollama"
	"github.com/inecosys/utilitytool/pkg/posts"
)

// postFlags mirrors the fields of the new-post form
type postFlags struct {
	title        string
	date         string
	description  string
	good         string
	bad          string
	goal         string
	instructions string
	postType     string
}

func (pf *postFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&pf.title, "title", "", "event title (required)")
	f.StringVar(&pf.date, "date", "", "event date YYYY-MM-DD (default today)")
	f.StringVar(&pf.description, "description", "", "what the event was about")
	f.StringVar(&pf.good, "good", "", "positive impressions")
	f.StringVar(&pf.bad, "bad", "", "possible improvements")
	f.StringVar(&pf.goal, "goal", "", "goal of participation")
	f.StringVar(&pf.instructions, "instructions", "", "extra instructions for the writer")
	f.StringVar(&pf.postType, "type", posts.Regular.String(), "post type: ILP, messe or regular")
}

func (pf *postFlags) post(now time.Time) (posts.Post, error) {
	p := posts.NewPost(now)
	p.EventTitle = pf.title
	if pf.date != "" {
		p.Date = pf.date
	}
	p.Description = pf.description
	p.Good = pf.good
	p.Bad = pf.bad
	p.Goal = pf.goal
	p.Instructions = pf.instructions

	t, err := posts.ParsePostType(pf.postType)
	if err != nil {
		return posts.Post{}, err
	}
	p.PostType = t
	return p, p.Validate()
}

var (
	newPostFlags   postFlags
	newPostDryRun  bool
	draftPostFlags postFlags
	draftBackend   string
	draftURL       string
	draftModel     string
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Create or draft LinkedIn posts",
}

var postNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Submit a new post to the post API",
	Long: `Builds a post from the flags, validates it and submits it to the API
configured under api.base_url.

Example:
  utilitytool post new --title "bauma 2025" --date 2025-04-07 --type messe`,
	Args: cobra.NoArgs,
	RunE: runPostNew,
}

var postDraftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Ask the language model for a post draft",
	Args:  cobra.NoArgs,
	RunE:  runPostDraft,
}

func init() {
	newPostFlags.register(postNewCmd)
	postNewCmd.Flags().BoolVar(&newPostDryRun, "dry-run", false, "print the JSON instead of submitting")

	draftPostFlags.register(postDraftCmd)
	postDraftCmd.Flags().StringVar(&draftBackend, "backend", "", "ollama or llamacpp (default from config)")
	postDraftCmd.Flags().StringVar(&draftURL, "url", "", "model server URL (default from config)")
	postDraftCmd.Flags().StringVar(&draftModel, "model", "", "model name (default from config)")

	postCmd.AddCommand(postNewCmd, postDraftCmd)
}

func runPostNew(cmd *cobra.Command, args []string) error {
	p, err := newPostFlags.post(time.Now())
	if err != nil {
		return err
	}

	if newPostDryRun {
		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	c, err := posts.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	if err != nil {
		return err
	}
	id, err := c.Submit(cmd.Context(), p)
	if err != nil {
		return err
	}

	logger.Info("post submitted", zap.Int64("id", id), zap.String("title", p.EventTitle))
	if id != 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "submitted post %d\n", id)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "submitted post")
	}
	return nil
}

func runPostDraft(cmd *cobra.Command, args []string) error {
	p, err := draftPostFlags.post(time.Now())
	if err != nil {
		return err
	}

	backend, url, model := cfg.Drafting.Backend, cfg.Drafting.URL, cfg.Drafting.Model
	if draftBackend != "" {
		backend = draftBackend
	}
	if draftURL != "" {
		url = draftURL
	}
	if draftModel != "" {
		model = draftModel
	}

	tc, err := newTextClient(backend, url)
	if err != nil {
		return err
	}

	logger.Debug("drafting post", zap.String("backend", backend), zap.String("model", model))
	draft, err := drafting.NewDrafter(tc).Draft(cmd.Context(), model, p)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), draft.Text)
	return nil
}

func newTextClient(backend, url string) (client.TextClient, error) {
	switch backend {
	case config.BackendOllama:
		c, err := ollama.NewClient(url)
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama client: %w", err)
		}
		return c, nil
	case config.BackendLlamaCpp:
		c, err := llamacpp.NewClient(url)
		if err != nil {
			return nil, fmt.Errorf("failed to create llama.cpp client: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown backend: %s (use 'ollama' or 'llamacpp')", backend)
	}
}
