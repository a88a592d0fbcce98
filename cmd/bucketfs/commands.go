package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/marmos91/bucketfs/internal/logger"
	"github.com/marmos91/bucketfs/pkg/filesystem"
	"github.com/marmos91/bucketfs/pkg/filesystem/s3"
)

// errUsage marks errors caused by wrong arguments rather than backend failures.
var errUsage = errors.New("usage")

type command struct {
	usage string
	run   func(ctx context.Context, fs filesystem.Adapter, out io.Writer, args []string) error
}

var commands = map[string]command{
	"ls":         {"ls [-r] <path>", runList},
	"cat":        {"cat <path>", runCat},
	"put":        {"put [-visibility public|private] [-content-type type] <local|-> <remote>", runPut},
	"rm":         {"rm <path>", runRemove},
	"mkdir":      {"mkdir <path>", runMkdir},
	"rmdir":      {"rmdir <path>", runRmdir},
	"mv":         {"mv <source> <destination>", runMove},
	"cp":         {"cp <source> <destination>", runCopy},
	"stat":       {"stat <path>", runStat},
	"visibility": {"visibility <path> [public|private]", runVisibility},
	"url":        {"url [-expires duration] <path>", runURL},
}

// execute runs the named command against fs.
func execute(ctx context.Context, fs filesystem.Adapter, out io.Writer, name string, args []string) error {
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}

	logger.Debug("Running %s %v", name, args)
	if err := cmd.run(ctx, fs, out, args); err != nil {
		if errors.Is(err, errUsage) {
			return fmt.Errorf("%w: bucketfs %s", errUsage, cmd.usage)
		}
		return err
	}
	return nil
}

// parseArgs parses subcommand flags and checks the positional argument count.
func parseArgs(flags *flag.FlagSet, args []string, min, max int) ([]string, error) {
	flags.SetOutput(io.Discard)
	if err := flags.Parse(args); err != nil {
		return nil, errUsage
	}
	rest := flags.Args()
	if len(rest) < min || len(rest) > max {
		return nil, errUsage
	}
	return rest, nil
}

func runList(ctx context.Context, fs filesystem.Adapter, out io.Writer, args []string) error {
	flags := flag.NewFlagSet("ls", flag.ContinueOnError)
	recursive := flags.Bool("r", false, "list recursively")
	rest, err := parseArgs(flags, args, 0, 1)
	if err != nil {
		return err
	}

	path := ""
	if len(rest) == 1 {
		path = rest[0]
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for entry, err := range fs.ListContents(ctx, path, *recursive) {
		if err != nil {
			return err
		}

		switch attrs := entry.(type) {
		case *filesystem.FileAttributes:
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", formatSize(attrs.FileSize), formatTime(attrs.LastModified), attrs.Path)
		case *filesystem.DirectoryAttributes:
			_, _ = fmt.Fprintf(w, "DIR\t\t%s/\n", attrs.Path)
		}
	}
	return w.Flush()
}

func runCat(ctx context.Context, fs filesystem.Adapter, out io.Writer, args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	rc, err := fs.ReadStream(ctx, args[0])
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	_, err = io.Copy(out, rc)
	return err
}

func runPut(ctx context.Context, fs filesystem.Adapter, out io.Writer, args []string) error {
	flags := flag.NewFlagSet("put", flag.ContinueOnError)
	visibility := flags.String("visibility", "", "public or private")
	contentType := flags.String("content-type", "", "explicit Content-Type")
	rest, err := parseArgs(flags, args, 2, 2)
	if err != nil {
		return err
	}

	options := map[string]any{}
	if *visibility != "" {
		v := filesystem.Visibility(*visibility)
		if v != filesystem.Public && v != filesystem.Private {
			return fmt.Errorf("invalid visibility %q", *visibility)
		}
		options[filesystem.OptionVisibility] = v
	}
	if *contentType != "" {
		options[string(s3.OptionContentType)] = *contentType
	}

	var r io.Reader = os.Stdin
	if rest[0] != "-" {
		f, err := os.Open(rest[0])
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	if err := fs.WriteStream(ctx, rest[1], r, filesystem.NewConfig(options)); err != nil {
		return err
	}
	logger.Info("Uploaded %s to %s", rest[0], rest[1])
	return nil
}

func runRemove(ctx context.Context, fs filesystem.Adapter, out io.Writer, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return fs.Delete(ctx, args[0])
}

func runMkdir(ctx context.Context, fs filesystem.Adapter, out io.Writer, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return fs.CreateDirectory(ctx, args[0], filesystem.Config{})
}

func runRmdir(ctx context.Context, fs filesystem.Adapter, out io.Writer, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return fs.DeleteDirectory(ctx, args[0])
}

func runMove(ctx context.Context, fs filesystem.Adapter, out io.Writer, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	return fs.Move(ctx, args[0], args[1], filesystem.Config{})
}

func runCopy(ctx context.Context, fs filesystem.Adapter, out io.Writer, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	return fs.Copy(ctx, args[0], args[1], filesystem.Config{})
}

func runStat(ctx context.Context, fs filesystem.Adapter, out io.Writer, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	path := args[0]

	size, err := fs.FileSize(ctx, path)
	if err != nil {
		return err
	}
	modified, err := fs.LastModified(ctx, path)
	if err != nil {
		return err
	}
	visibility, err := fs.Visibility(ctx, path)
	if err != nil {
		return err
	}

	// Objects stored without a content type have no MIME type to report
	mimeType := "-"
	if attrs, err := fs.MimeType(ctx, path); err == nil {
		mimeType = attrs.MimeType
	}

	w := tabwriter.NewWriter(out, 0, 4, 1, ' ', 0)
	_, _ = fmt.Fprintf(w, "Path:\t%s\n", path)
	_, _ = fmt.Fprintf(w, "Size:\t%s\n", formatSize(size.FileSize))
	_, _ = fmt.Fprintf(w, "Modified:\t%s\n", formatTime(modified.LastModified))
	_, _ = fmt.Fprintf(w, "MIME type:\t%s\n", mimeType)
	_, _ = fmt.Fprintf(w, "Visibility:\t%s\n", visibility.Visibility)
	return w.Flush()
}

func runVisibility(ctx context.Context, fs filesystem.Adapter, out io.Writer, args []string) error {
	switch len(args) {
	case 1:
		attrs, err := fs.Visibility(ctx, args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, attrs.Visibility)
		return err
	case 2:
		v := filesystem.Visibility(args[1])
		if v != filesystem.Public && v != filesystem.Private {
			return fmt.Errorf("invalid visibility %q", args[1])
		}
		return fs.SetVisibility(ctx, args[0], v)
	default:
		return errUsage
	}
}

func runURL(ctx context.Context, fs filesystem.Adapter, out io.Writer, args []string) error {
	flags := flag.NewFlagSet("url", flag.ContinueOnError)
	expires := flags.Duration("expires", 0, "issue a presigned URL valid for this long")
	rest, err := parseArgs(flags, args, 1, 1)
	if err != nil {
		return err
	}

	var url string
	if *expires > 0 {
		generator, ok := fs.(filesystem.TemporaryURLGenerator)
		if !ok {
			return errors.New("storage backend does not support temporary URLs")
		}
		url, err = generator.TemporaryURL(ctx, rest[0], time.Now().Add(*expires), filesystem.Config{})
	} else {
		generator, ok := fs.(filesystem.PublicURLGenerator)
		if !ok {
			return errors.New("storage backend does not support public URLs")
		}
		url, err = generator.PublicURL(rest[0], filesystem.Config{})
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, url)
	return err
}

func formatSize(size *int64) string {
	if size == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *size)
}

func formatTime(unix *int64) string {
	if unix == nil {
		return "-"
	}
	return time.Unix(*unix, 0).UTC().Format(time.RFC3339)
}
