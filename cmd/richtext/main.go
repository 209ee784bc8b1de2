package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/goliatone/go-richtext/cmd/richtext/internal/bootstrap"
	convertcmd "github.com/goliatone/go-richtext/internal/commands/convert"
	imagescmd "github.com/goliatone/go-richtext/internal/commands/images"
	"github.com/goliatone/go-richtext/internal/document"
)

var moduleBuilder = bootstrap.BuildModule

var errUsage = errors.New("usage: richtext <convert|outline|normalize-image|languages> [flags]")

var errUnknownLanguage = errors.New("unknown code language")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Fatalf("richtext: %v", err)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "convert":
		return runConvert(ctx, args[1:], stdin, stdout, "")
	case "outline":
		return runConvert(ctx, args[1:], stdin, stdout, convertcmd.FormatOutline)
	case "normalize-image":
		return runNormalizeImage(ctx, args[1:], stdout)
	case "languages":
		return runLanguages(args[1:], stdout)
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}

func runConvert(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, fixedFormat string) error {
	fs := flag.NewFlagSet("richtext-convert", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a TOML configuration file")
	logLevel := fs.String("log-level", "", "Enable logging at the given level")
	input := fs.String("in", "-", "Markdown file to read, - for stdin")
	format := fs.String("format", convertcmd.FormatMarkdown, "Output format: markdown, json, html or outline")
	embed := fs.Bool("embed-images", false, "Replace remote images with normalized data URIs")
	extensions := fs.String("extensions", "", "Comma separated preview extensions for html output")
	hardWraps := fs.Bool("hard-wraps", false, "Render soft line breaks as <br> in html output")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fixedFormat != "" {
		*format = fixedFormat
	}

	source, err := readInput(*input, stdin)
	if err != nil {
		return err
	}

	res, err := moduleBuilder(bootstrap.Options{ConfigPath: *configPath, LogLevel: *logLevel})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer res.Close()

	cmd := convertcmd.ConvertCommand{
		Markdown:    source,
		Format:      *format,
		EmbedImages: *embed,
		Extensions:  bootstrap.SplitList(*extensions),
		HardWraps:   *hardWraps,
		Output:      stdout,
	}
	if err := res.Commands.Convert.Execute(ctx, cmd); err != nil {
		return fmt.Errorf("execute convert command: %w", err)
	}
	return nil
}

func runNormalizeImage(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("richtext-normalize-image", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a TOML configuration file")
	logLevel := fs.String("log-level", "", "Enable logging at the given level")
	path := fs.String("file", "", "Image file to normalize")
	rawURL := fs.String("url", "", "Remote image URL to normalize")
	mimeType := fs.String("mime", "", "MIME type of -file when the extension is ambiguous")
	alt := fs.String("alt", "", "Alt text used with -markdown")
	asMarkdown := fs.Bool("markdown", false, "Print a markdown image reference instead of the bare data URI")

	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := moduleBuilder(bootstrap.Options{ConfigPath: *configPath, LogLevel: *logLevel})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer res.Close()

	cmd := imagescmd.NormalizeImageCommand{
		Path:     *path,
		URL:      *rawURL,
		MIMEType: *mimeType,
		Alt:      *alt,
		Markdown: *asMarkdown,
		Output:   stdout,
	}
	if err := res.Commands.Images.Execute(ctx, cmd); err != nil {
		return fmt.Errorf("execute normalize-image command: %w", err)
	}
	return nil
}

// runLanguages lists the canonical code fence languages, or resolves a single
// tag with -resolve.
func runLanguages(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("richtext-languages", flag.ContinueOnError)
	resolve := fs.String("resolve", "", "Print the canonical name of a fence tag")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *resolve != "" {
		name, ok := document.LookupLanguage(*resolve)
		if !ok {
			return fmt.Errorf("%w: %q", errUnknownLanguage, *resolve)
		}
		_, err := fmt.Fprintln(stdout, name)
		return err
	}
	for _, name := range document.Languages() {
		if _, err := fmt.Fprintln(stdout, name); err != nil {
			return err
		}
	}
	return nil
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
