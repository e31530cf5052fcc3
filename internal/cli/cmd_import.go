package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	fincherrors "github.com/rahulmohankumar24/finch-demo/internal/errors"
	"github.com/rahulmohankumar24/finch-demo/internal/storage"
)

// stdinIsTerminal reports whether a confirmation prompt can be shown.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newImportCmd creates the import command
func newImportCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "import <file-or-glob>...",
		Short: "Replace every matter with snapshot files",
		Long: `Replace every matter with the contents of one or more snapshot files.

Arguments may be paths or doublestar globs (backups/**/*.yaml). Matters from
all files are merged; a matter id appearing in two files is an error. Every
snapshot is validated before anything is replaced. Clients are upserted.

Import asks for confirmation on a terminal. Pass --yes to skip the prompt,
which is required when stdin is not a terminal.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := expandPatterns(args)
			if err != nil {
				return err
			}
			snap, err := readSnapshots(paths)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			svc, _, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			if !yes {
				existing, err := svc.ListMatters(cmd.Context())
				if err != nil {
					return err
				}
				if !stdinIsTerminal() {
					return fincherrors.ErrInvalidInput("yes", "import replaces every matter; pass --yes when stdin is not a terminal")
				}
				prompt := fmt.Sprintf("Replace %d existing matters with %d from %d file(s)?", len(existing), len(snap.Matters), len(paths))
				ok, err := confirm(cmd.InOrStdin(), out, prompt)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Import cancelled")
					return nil
				}
			}

			res, err := svc.Import(cmd.Context(), snap)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(out, res)
			}
			fmt.Fprintf(out, "Imported %d matters and %d clients\n", res.Matters, res.Clients)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// expandPatterns resolves each argument to files. Arguments without glob
// metacharacters must exist; globs must match at least one file.
func expandPatterns(patterns []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fincherrors.ErrInvalidInput("pattern", fmt.Sprintf("%q: %v", p, err))
		}
		if len(matches) == 0 {
			return nil, fincherrors.ErrInvalidInput("pattern", fmt.Sprintf("no files match %q", p))
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	return paths, nil
}

// readSnapshots decodes and merges snapshot files. Clients later in the
// list replace earlier ones with the same id.
func readSnapshots(paths []string) (*storage.Snapshot, error) {
	merged := storage.NewSnapshot()
	origin := make(map[string]string)
	clientIdx := make(map[string]int)

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		snap, err := storage.DecodeSnapshot(data)
		if err != nil {
			return nil, fincherrors.ErrInvalidInput("snapshot", fmt.Sprintf("%s: %v", path, err))
		}

		for id, md := range snap.Matters {
			if prev, dup := origin[id]; dup {
				return nil, fincherrors.ErrInvalidInput("snapshot", fmt.Sprintf("matter %s appears in both %s and %s", id, prev, path))
			}
			origin[id] = path
			merged.Matters[id] = md
		}
		for _, c := range snap.Clients {
			if i, ok := clientIdx[c.ID]; ok {
				merged.Clients[i] = c
				continue
			}
			clientIdx[c.ID] = len(merged.Clients)
			merged.Clients = append(merged.Clients, c)
		}
	}
	return merged, nil
}

// confirm asks a yes/no question; anything but y or yes is no.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
