package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/focusbrief/internal/capsule"
	"github.com/hpungsan/focusbrief/internal/errors"
	"github.com/hpungsan/focusbrief/internal/ops"
	"github.com/hpungsan/focusbrief/internal/source"
	"github.com/hpungsan/focusbrief/internal/web"
)

// newCLIApp creates the CLI application with all commands. a may be nil
// for help and version output.
func newCLIApp(a *app) *cli.App {
	cliApp := &cli.App{
		Name:    "focusbrief",
		Usage:   "Turn text, links and files into action-oriented capsules",
		Version: Version,
		Commands: []*cli.Command{
			textCmd(a),
			urlCmd(a),
			fileCmd(a),
			batchCmd(a),
			listCmd(a),
			fetchCmd(a),
			deleteCmd(a),
			serveCmd(a),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	cliApp.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return cliApp
}

// textCmd creates the text command.
func textCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "text",
		Usage: "Create a capsule from text read on stdin",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: "Where the text came from (default Manual)"},
		},
		Action: func(c *cli.Context) error {
			if c.App.Reader == os.Stdin && !stdinHasData() {
				return outputError(errors.NewInvalidInput("text must be piped via stdin"))
			}
			text, err := readAll(c.App.Reader)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return create(c, a, source.Reference{Kind: source.KindText, Text: text, Label: c.String("source")})
		},
	}
}

// urlCmd creates the url command.
func urlCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "url",
		Usage:     "Create a capsule from an article, YouTube video, tweet or PDF link",
		ArgsUsage: "<url>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidInput("exactly one url is required"))
			}
			return create(c, a, source.Reference{Kind: source.KindURL, URL: c.Args().First()})
		},
	}
}

// fileCmd creates the file command.
func fileCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "file",
		Usage:     "Create a capsule from a local image, audio, video, PDF or text file",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: "Provenance label (default: file name)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidInput("exactly one path is required"))
			}
			ref, err := ops.ReadLocalFile(c.Args().First(), a.cfg.MaxFileBytes)
			if err != nil {
				return outputError(err)
			}
			ref.Label = c.String("source")
			return create(c, a, ref)
		},
	}
}

// batchCmd creates the batch command.
func batchCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "Create capsules for newline-separated URLs read on stdin",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "concurrency", Aliases: []string{"c"}, Usage: "Parallel pipelines (default from config)"},
		},
		Action: func(c *cli.Context) error {
			if c.App.Reader == os.Stdin && !stdinHasData() {
				return outputError(errors.NewInvalidInput("urls must be piped via stdin"))
			}
			urls, err := readLines(c.App.Reader)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if len(urls) == 0 {
				return outputError(errors.NewInvalidInput("no urls on stdin"))
			}
			if len(urls) > ops.MaxBatchItems {
				return outputError(errors.NewInvalidInput(fmt.Sprintf("at most %d urls per batch", ops.MaxBatchItems)))
			}

			refs := make([]source.Reference, len(urls))
			for i, u := range urls {
				refs[i] = source.Reference{Kind: source.KindURL, URL: u}
			}

			p := *a.pipeline
			if n := c.Int("concurrency"); n > 0 {
				p.BatchConcurrency = n
			}
			return outputJSON(c, p.Batch(c.Context, refs))
		},
	}
}

// listCmd creates the list command.
func listCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List stored capsules, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "source-type", Aliases: []string{"t"}, Usage: "Filter by source type"},
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "Filter by priority: high|medium|low"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Max results"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Skip results"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, a.db, ops.ListInput{
				SourceType: c.String("source-type"),
				Priority:   c.String("priority"),
				Limit:      c.Int("limit"),
				Offset:     c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// fetchCmd creates the fetch command.
func fetchCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Fetch a capsule by ID",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Output format: json|md"},
			&cli.BoolFlag{Name: "no-text", Usage: "Exclude extractedText from output"},
		},
		Action: func(c *cli.Context) error {
			input := ops.FetchInput{ID: c.Args().First()}
			if c.Bool("no-text") {
				includeText := false
				input.IncludeText = &includeText
			}

			format := c.String("format")
			if format != "json" && format != "md" {
				return outputError(errors.NewInvalidInput("format must be json or md"))
			}

			output, err := ops.Fetch(c.Context, a.db, input)
			if err != nil {
				return outputError(err)
			}

			if format == "md" {
				_, err := io.WriteString(c.App.Writer, capsule.ToMarkdown(output))
				return err
			}
			return outputJSON(c, output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Permanently delete a capsule",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(c.Context, a.db, ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Address to bind to"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8080, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv, h, err := web.NewServer(web.Deps{
				DB:       a.db,
				Pipeline: a.pipeline,
				Config:   a.cfg,
				Log:      a.log,
				Version:  Version,
			}, c.String("bind"), c.Int("port"))
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			defer h.Close()
			return web.Run(srv, a.log)
		},
	}
}

// Helper functions

// create runs the pipeline and prints the result envelope. Failures still
// print the envelope, then exit non-zero.
func create(c *cli.Context, a *app, ref source.Reference) error {
	cp, err := a.pipeline.Create(c.Context, ref)
	res := ops.NewResult(cp, err)
	if jsonErr := outputJSON(c, res); jsonErr != nil {
		return jsonErr
	}
	if !res.Success {
		return cli.Exit(fmt.Sprintf("[%s] %s", res.ErrorKind, res.Message), 1)
	}
	return nil
}

// outputJSON marshals result to the app's writer as JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if bErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", bErr.Code, bErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readAll reads all content from r.
func readAll(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// readLines returns the non-blank, non-comment lines of r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, sc.Err()
}
