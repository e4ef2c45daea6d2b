package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"pocketkit/internal/app"
	"pocketkit/internal/models"
)

const DefaultConfigPath = "./config.yaml"

var ErrUsage = errors.New("usage: pocket <login|add|get|archive|readd|favorite|unfavorite|delete|tags_clear> [flags]")

// Command is a parsed command line.
type Command struct {
	Name       string
	ConfigPath string

	LoginMode string
	LoginPort int

	loginPortSet bool

	Add      models.AddRequest
	Retrieve models.RetrieveRequest
	ItemIDs  []string
}

// Parse parses args (without the program name) into a Command.
func Parse(args []string, stderr io.Writer) (Command, error) {
	if len(args) == 0 {
		return Command{}, ErrUsage
	}

	cmd := Command{Name: args[0]}
	fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cmd.ConfigPath, "config", DefaultConfigPath, "path to the YAML config file")

	var (
		tags    string
		state   string
		sort    string
		detail  string
		since   int64
		ids     string
		content string
	)

	switch cmd.Name {
	case "login":
		fs.StringVar(&cmd.LoginMode, "mode", "", "login flow: local or browser (default from config)")
		fs.IntVar(&cmd.LoginPort, "port", 0, "local callback port, 0 picks a free port (default from config)")
	case "add":
		fs.StringVar(&cmd.Add.URL, "url", "", "URL of the item to save")
		fs.StringVar(&cmd.Add.Title, "title", "", "title of the item")
		fs.StringVar(&tags, "tags", "", "comma separated tags")
		fs.StringVar(&cmd.Add.TweetID, "tweet", "", "tweet id the URL came from")
	case "get":
		fs.StringVar(&state, "state", "", "unread, archive or all")
		fs.StringVar(&sort, "sort", "", "newest, oldest, title or site")
		fs.StringVar(&detail, "detail", "", "simple or complete")
		fs.StringVar(&content, "content", "", "article, video or image")
		fs.StringVar(&cmd.Retrieve.Tag, "tag", "", "tag filter, _untagged_ for items without tags")
		fs.StringVar(&cmd.Retrieve.Search, "search", "", "search title and URL")
		fs.StringVar(&cmd.Retrieve.Domain, "domain", "", "domain filter")
		fs.Int64Var(&since, "since", 0, "unix timestamp, only items changed since")
		fs.IntVar(&cmd.Retrieve.Count, "count", 0, "number of items")
		fs.IntVar(&cmd.Retrieve.Offset, "offset", 0, "offset, used with count")
	case "archive", "readd", "favorite", "unfavorite", "delete", "tags_clear":
		fs.StringVar(&ids, "id", "", "comma separated item ids")
	default:
		return Command{}, fmt.Errorf("unknown command %q: %w", cmd.Name, ErrUsage)
	}

	if err := fs.Parse(args[1:]); err != nil {
		return Command{}, err
	}

	if tags != "" {
		cmd.Add.Tags = splitList(tags)
	}
	cmd.Retrieve.State = models.State(state)
	cmd.Retrieve.Sort = models.Sort(sort)
	cmd.Retrieve.DetailType = models.DetailType(detail)
	cmd.Retrieve.ContentType = models.ContentType(content)
	if since > 0 {
		t := time.Unix(since, 0)
		cmd.Retrieve.Since = &t
	}
	cmd.ItemIDs = append(splitList(ids), fs.Args()...)
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "port" {
			cmd.loginPortSet = true
		}
	})

	return cmd, nil
}

// CallbackPort returns the -port flag when given, otherwise configured.
func (c Command) CallbackPort(configured int) int {
	if c.loginPortSet {
		return c.LoginPort
	}
	return configured
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Run dispatches cmd to application. loginMode is used when -mode was not given.
func Run(ctx context.Context, cmd Command, application *app.App, loginMode string) error {
	switch cmd.Name {
	case "login":
		mode := cmd.LoginMode
		if mode == "" {
			mode = loginMode
		}
		_, err := application.Login(ctx, mode)
		return err
	case "add":
		return application.Add(ctx, cmd.Add)
	case "get":
		return application.Retrieve(ctx, cmd.Retrieve)
	default:
		return application.Modify(ctx, cmd.Name, cmd.ItemIDs...)
	}
}
