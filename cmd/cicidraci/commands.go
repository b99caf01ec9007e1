package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/justchokingaround/cicidraci/internal/config"
	"github.com/justchokingaround/cicidraci/internal/playback"
	"github.com/justchokingaround/cicidraci/internal/search"
	"github.com/justchokingaround/cicidraci/pkg/types"
)

// requestTimeout bounds the plain commands; the HTTP client has its own per-request timeout
const requestTimeout = 30 * time.Second

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Display version information",
	Annotations: map[string]string{skipSetup: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cicidraci version %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Generate default configuration file",
	Annotations: map[string]string{skipSetup: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultConfigFile()
		}
		force, _ := cmd.Flags().GetBool("force")

		if err := config.WriteDefault(path, force); err != nil {
			return err
		}
		fmt.Printf("Configuration file created: %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := config.Encode(currentConfig())
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Display configuration file path",
	Annotations: map[string]string{skipSetup: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			fmt.Println(cfgFile)
			return
		}
		fmt.Println(config.DefaultConfigFile())
	},
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open the interactive browser on a category",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		if category == "" {
			category = currentConfig().Catalog.DefaultCategory
		}
		return runTUI(types.Category(category))
	},
}

var listCmd = &cobra.Command{
	Use:   "list [category]",
	Short: "List the titles of a category feed",
	Long: `List one page of a category feed. Categories: foryou, trending, latest,
populersearch, randomdrama, and all (every feed merged, single page).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category := types.Category(currentConfig().Catalog.DefaultCategory)
		if len(args) == 1 {
			category = types.Category(args[0])
		}
		if !category.Valid() {
			return fmt.Errorf("unknown category %q", category)
		}
		page, _ := cmd.Flags().GetInt("page")
		if page < 1 {
			return fmt.Errorf("page must be at least 1")
		}

		ctx, cancel := commandContext()
		defer cancel()

		c := newComponents()

		var titles []types.Title
		if page == 1 || category == types.CategoryAll {
			if err := c.catalog.Load(ctx, category); err != nil {
				return fmt.Errorf("failed to load %s: %w", category, err)
			}
			titles = c.catalog.Visible()
		} else {
			feed, err := c.client.Feed(ctx, category, page)
			if err != nil {
				return fmt.Errorf("failed to load %s page %d: %w", category, page, err)
			}
			titles = state.Annotate(feed.Titles)
		}

		c.out.PrintHeader(fmt.Sprintf("%s (page %d)", category.Label(), page))
		return c.out.PrintTitles(titles)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search for dramas",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		c := newComponents()
		defer c.search.Close()

		c.search.Mount(ctx)
		c.search.Submit(strings.Join(args, " "))
		query := c.search.Query()
		if query == "" {
			return fmt.Errorf("search query must not be blank")
		}

		if err := c.catalog.Search(ctx, query); err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		c.out.PrintHeader(fmt.Sprintf("Results for %q", query))
		return c.out.PrintTitles(c.catalog.SearchResults())
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <query>",
	Short: "Show search suggestions for a partial query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		c := newComponents()
		suggestions, err := c.client.Suggestions(ctx, strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("failed to fetch suggestions: %w", err)
		}

		c.out.PrintList(lo.Subset(suggestions, 0, search.DefaultSuggestionLimit), "No suggestions.")
		return nil
	},
}

var popularCmd = &cobra.Command{
	Use:   "popular",
	Short: "Show popular searches",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		c := newComponents()
		defer c.search.Close()

		c.search.Mount(ctx)
		c.out.PrintHeader("Popular searches")
		c.out.PrintList(c.search.Popular(), "No popular searches.")
		return nil
	},
}

var episodesCmd = &cobra.Command{
	Use:   "episodes <id>",
	Short: "List the episodes of a title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		c := newComponents()
		if err := c.selector.Load(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to load episodes: %w", err)
		}

		if t, ok := state.Title(args[0]); ok {
			c.out.PrintHeader(t.Name)
		}
		return c.out.PrintEpisodes(c.selector.Episodes(), c.selector.Position())
	},
}

var playCmd = &cobra.Command{
	Use:   "play <id>",
	Short: "Play an episode of a title in mpv",
	Long: `Play an episode of a title in mpv. Without --episode the last watched
episode is resumed, or the first one for a new title.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		c := newComponents()
		id := args[0]

		loadCtx, loadCancel := context.WithTimeout(ctx, requestTimeout)
		err := c.selector.Load(loadCtx, id)
		loadCancel()
		if err != nil {
			return fmt.Errorf("failed to load episodes: %w", err)
		}

		if cmd.Flags().Changed("episode") {
			n, _ := cmd.Flags().GetInt("episode")
			if !c.selector.SelectIndex(n - 1) {
				return fmt.Errorf("episode %d not found", n)
			}
		}

		ep, ok := c.selector.Current()
		if !ok {
			return fmt.Errorf("title %s has no episodes", id)
		}

		name := id
		if t, ok := state.Title(id); ok {
			name = t.Name
		}

		if c.session == nil {
			url, ok := c.selector.URL()
			if !ok {
				return fmt.Errorf("no video available for episode %d", ep.Index+1)
			}
			c.out.PrintWarning("mpv not found, stream URL:")
			fmt.Println(url)
			return nil
		}

		return playAndWait(ctx, c, name)
	},
}

// playAndWait plays the current episode and blocks until playback ends,
// fails, or ctx is cancelled
func playAndWait(ctx context.Context, c *components, name string) error {
	states := make(chan playback.State, 8)
	c.session.OnChange(func(s playback.State) {
		select {
		case states <- s:
		default:
		}
	})
	go c.session.Run(ctx)

	if err := c.session.PlayCurrent(ctx, name); err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}

	ep, _ := c.selector.Current()
	for {
		select {
		case <-ctx.Done():
			return c.session.Stop(context.Background())
		case s := <-states:
			switch s {
			case playback.StateNoMedia:
				return fmt.Errorf("no video available for episode %d", ep.Index+1)
			case playback.StateReady:
				c.out.PrintSuccess(fmt.Sprintf("Playing %s, episode %d", name, ep.Index+1))
			case playback.StateError:
				return errors.New(c.selector.Message())
			case playback.StateEnded:
				return nil
			}
		}
	}
}

var favoriteCmd = &cobra.Command{
	Use:   "favorite <id>",
	Short: "Toggle the favorite flag of a title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		fav, err := state.ToggleFavorite(id)
		if err != nil {
			return fmt.Errorf("failed to update favorite: %w", err)
		}

		out := newComponents().out
		label := id
		if t, ok := state.Title(id); ok {
			label = t.Name
		}
		if fav {
			out.PrintSuccess(fmt.Sprintf("Added %s to favorites", label))
		} else {
			out.PrintSuccess(fmt.Sprintf("Removed %s from favorites", label))
		}
		return nil
	},
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show or clear recent searches",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := newComponents().out

		if clearAll, _ := cmd.Flags().GetBool("clear"); clearAll {
			if err := state.ClearRecentSearches(); err != nil {
				return fmt.Errorf("failed to clear recent searches: %w", err)
			}
			out.PrintSuccess("Recent searches cleared")
			return nil
		}

		out.PrintHeader("Recent searches")
		out.PrintList(state.RecentSearches(), "No recent searches.")
		return nil
	},
}

var shareCmd = &cobra.Command{
	Use:   "share <id>",
	Short: "Copy the web link of a title to the clipboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newComponents()
		link := c.sharer.Link(args[0])

		if t, ok := state.Title(args[0]); ok {
			c.out.PrintTitle(t, link)
		} else {
			c.out.PrintDetail("Link", link)
		}

		if err := c.sharer.Copy(link); err != nil {
			c.out.PrintWarning("Could not copy link: " + err.Error())
		} else {
			c.out.PrintSuccess("Link copied to clipboard!")
		}

		if open, _ := cmd.Flags().GetBool("open"); open {
			if err := c.sharer.Open(link); err != nil {
				return fmt.Errorf("failed to open browser: %w", err)
			}
		}
		return nil
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing configuration file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)

	browseCmd.Flags().StringP("category", "c", "", "initial category (foryou, trending, latest, populersearch, randomdrama, all)")
	listCmd.Flags().IntP("page", "p", 1, "page number")
	playCmd.Flags().IntP("episode", "e", 0, "episode number, starting at 1")
	recentCmd.Flags().Bool("clear", false, "clear recent searches")
	shareCmd.Flags().Bool("open", false, "also open the link in the browser")
}
