package content

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	contentusecases "github.com/mataroo/mataroo/internal/application/content/usecases"
	"github.com/mataroo/mataroo/internal/domain/content"
	"github.com/mataroo/mataroo/internal/interfaces/cli/bootstrap"
	"github.com/mataroo/mataroo/internal/interfaces/cli/output"
	"github.com/mataroo/mataroo/internal/shared/biztime"
)

func NewGenerateCommand(flags *bootstrap.Flags) *cobra.Command {
	var (
		platform string
		publish  bool
	)

	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Draft a post from a prompt",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.Load(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			prompt := strings.Join(args, " ")
			draft, err := app.Generate.Execute(cmd.Context(), contentusecases.GenerateCommand{
				Prompt:   prompt,
				Platform: platform,
			})
			if err != nil {
				return err
			}
			printDraft(cmd.OutOrStdout(), draft)

			if !publish {
				return nil
			}
			published, err := app.Publish.Execute(cmd.Context(), contentusecases.PublishCommand{
				Content:    draft.Body(),
				UserPrompt: prompt,
				Hashtags:   draft.Hashtags,
				Platform:   draft.Platform.String(),
			})
			if err != nil {
				return err
			}
			printPublished(cmd.OutOrStdout(), published)
			return nil
		},
	}

	cmd.Flags().StringVarP(&platform, "platform", "p", "", "Target platform (default from config)")
	cmd.Flags().BoolVar(&publish, "post", false, "Publish the draft right away")
	return cmd
}

func NewPostCommand(flags *bootstrap.Flags) *cobra.Command {
	var (
		platform   string
		userPrompt string
		hashtags   []string
	)

	cmd := &cobra.Command{
		Use:   "post <content>",
		Short: "Publish a post to a linked account",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.Load(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			published, err := app.Publish.Execute(cmd.Context(), contentusecases.PublishCommand{
				Content:    strings.Join(args, " "),
				UserPrompt: userPrompt,
				Hashtags:   hashtags,
				Platform:   platform,
			})
			if err != nil {
				return err
			}
			printPublished(cmd.OutOrStdout(), published)
			return nil
		},
	}

	cmd.Flags().StringVarP(&platform, "platform", "p", "", "Target platform (default from config)")
	cmd.Flags().StringVar(&userPrompt, "prompt", "", "Prompt the content was generated from")
	cmd.Flags().StringSliceVar(&hashtags, "hashtags", nil, "Hashtags to record with the post")
	return cmd
}

func NewHistoryCommand(flags *bootstrap.Flags) *cobra.Command {
	var (
		platform string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List generated posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.Load(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()

			items, err := app.History.Execute(cmd.Context(), contentusecases.HistoryQuery{
				Platform: platform,
				Limit:    limit,
			})
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), items)
		},
	}

	cmd.Flags().StringVarP(&platform, "platform", "p", "", "Only this platform (default: all)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of posts (default from config)")
	return cmd
}

func printDraft(out io.Writer, d *content.Draft) {
	fmt.Fprintln(out, d.Body())
	fmt.Fprintln(out)
	if limit := content.MaxLength(d.Platform); limit > 0 {
		fmt.Fprintf(out, "%d/%d characters for %s\n", d.CharCount, limit, d.Platform.DisplayName())
	} else {
		fmt.Fprintf(out, "%d characters for %s\n", d.CharCount, d.Platform.DisplayName())
	}
}

func printPublished(out io.Writer, p *content.Published) {
	if p.URL != "" {
		fmt.Fprintf(out, "Posted to %s: %s\n", p.Platform.DisplayName(), p.URL)
		return
	}
	fmt.Fprintf(out, "Posted to %s (id %s)\n", p.Platform.DisplayName(), p.PostID)
}

func printHistory(out io.Writer, items []content.HistoryItem) error {
	if len(items) == 0 {
		fmt.Fprintln(out, "No posts yet")
		return nil
	}

	t := output.NewTable(out, "CREATED", "PLATFORM", "STATUS", "CONTENT")
	for _, item := range items {
		created := "-"
		if item.CreatedAt != nil {
			created = biztime.FormatInBizTimezone(*item.CreatedAt, time.DateTime)
		}
		t.Append([]string{created, item.Platform.String(), item.Status, preview(item.GeneratedContent, 60)})
	}
	t.Render()
	return nil
}

// preview is the first line of s, cut to n runes.
func preview(s string, n int) string {
	s, _, _ = strings.Cut(strings.TrimSpace(s), "\n")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
