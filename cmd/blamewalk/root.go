package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/cyraxred/blamewalk/blame"
	"github.com/cyraxred/blamewalk/cmd/blamewalk/internal/config"
)

func memoryStorer() *memory.Storage { return memory.NewStorage() }

// loadRepository opens a local path or clones uri into memory, matching
// the teacher's cmd/hercules/root.go loadRepository split between
// git.PlainOpen and git.Clone.
func loadRepository(uri string) (*git.Repository, error) {
	if strings.Contains(uri, "://") {
		return git.Clone(memoryStorer(), nil, &git.CloneOptions{URL: uri})
	}
	expanded, err := homedir.Expand(uri)
	if err != nil {
		return nil, err
	}
	return git.PlainOpen(expanded)
}

func parseOptionalHash(s string) (plumbing.Hash, error) {
	if s == "" {
		return plumbing.ZeroHash, nil
	}
	return plumbing.NewHash(s), nil
}

var rootCmd = &cobra.Command{
	Use:   "blamewalk <repo> <path>",
	Short: "Blame a file in a Git repository.",
	Long: `blamewalk walks a file's commit history line by line, attributing
every line of the newest revision to the commit that last touched it.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		getBool := func(name string) bool {
			v, err := flags.GetBool(name)
			if err != nil {
				panic(err)
			}
			return v
		}
		getString := func(name string) string {
			v, err := flags.GetString(name)
			if err != nil {
				panic(err)
			}
			return v
		}
		getUint32 := func(name string) uint32 {
			v, err := flags.GetUint32(name)
			if err != nil {
				panic(err)
			}
			return v
		}

		cfgPath := getString("config")
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("failed to load config %s: %w", cfgPath, err)
		}

		uri, path := args[0], args[1]
		repo, err := loadRepository(uri)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", uri, err)
		}

		newest, err := parseOptionalHash(getString("newest"))
		if err != nil {
			return err
		}
		oldest, err := parseOptionalHash(getString("oldest"))
		if err != nil {
			return err
		}

		opts := blame.OptionsInit()
		opts.NewestCommit = newest
		opts.OldestCommit = oldest
		opts.MinLine = getUint32("min-line")
		opts.MaxLine = getUint32("max-line")

		if cfg.Blame.TrackCopiesSameFile || getBool("track-copies-same-file") {
			opts.Flags |= blame.TrackCopiesSameFile
		}
		if cfg.Blame.TrackCopiesMoves || getBool("track-copies-same-commit-moves") {
			opts.Flags |= blame.TrackCopiesSameCommitMoves
		}
		if cfg.Blame.TrackCopiesCopies || getBool("track-copies-same-commit-copies") {
			opts.Flags |= blame.TrackCopiesSameCommitCopies
		}
		if cfg.Blame.TrackCopiesAny || getBool("track-copies-any-commit-copies") {
			opts.Flags |= blame.TrackCopiesAnyCommitCopies
		}
		if cfg.Blame.FirstParent || getBool("first-parent") {
			opts.Flags |= blame.FirstParent
		}
		if cfg.Blame.IgnoreWhitespace || getBool("ignore-whitespace") {
			opts.Flags |= blame.IgnoreWhitespace
		}
		if cfg.Blame.UseMailmap || getBool("mailmap") {
			opts.Flags |= blame.UseMailmap
		}

		result, err := blame.BlameFile(repo, path, opts)
		if err != nil {
			return fmt.Errorf("blame failed: %w", err)
		}
		defer result.Free()

		if bufferPath := getString("buffer"); bufferPath != "" {
			buf, err := os.ReadFile(bufferPath)
			if err != nil {
				return fmt.Errorf("failed to read buffer %s: %w", bufferPath, err)
			}
			result, err = blame.BlameBuffer(result, buf)
			if err != nil {
				return fmt.Errorf("buffer blame failed: %w", err)
			}
		}

		if getBool("json") {
			return printJSON(result)
		}
		printPorcelain(result)
		return nil
	},
}

// printPorcelain renders one line per hunk, closest in spirit to `git
// blame --line-porcelain`'s summary line: short hash, original path and
// line, author, and the number of lines in the hunk.
func printPorcelain(b *blame.Blame) {
	for i := uint32(0); i < b.HunkCount(); i++ {
		h := b.HunkByIndex(int(i))
		short := h.FinalCommitID.String()
		if len(short) > 8 {
			short = short[:8]
		}
		if h.IsBufferBlame() {
			short = "00000000"
		}
		fmt.Printf("%s %s:%d (%s) +%d\n", short, h.OrigPath, h.OrigStartLine, h.FinalSignature.Name, h.LinesInHunk)
	}
}

type jsonHunk struct {
	FinalStartLine uint32 `json:"final_start_line"`
	LinesInHunk    uint32 `json:"lines_in_hunk"`
	OrigStartLine  uint32 `json:"orig_start_line"`
	OrigPath       string `json:"orig_path"`
	FinalCommitID  string `json:"final_commit_id"`
	Boundary       bool   `json:"boundary"`
	AuthorName     string `json:"author_name"`
	AuthorEmail    string `json:"author_email"`
}

func printJSON(b *blame.Blame) error {
	out := make([]jsonHunk, 0, b.HunkCount())
	for i := uint32(0); i < b.HunkCount(); i++ {
		h := b.HunkByIndex(int(i))
		out = append(out, jsonHunk{
			FinalStartLine: h.FinalStartLine,
			LinesInHunk:    h.LinesInHunk,
			OrigStartLine:  h.OrigStartLine,
			OrigPath:       h.OrigPath,
			FinalCommitID:  h.FinalCommitID.String(),
			Boundary:       h.Boundary,
			AuthorName:     h.FinalSignature.Name,
			AuthorEmail:    h.FinalSignature.Email,
		})
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func init() {
	flags := rootCmd.Flags()
	flags.String("config", ".blamewalk.toml", "Path to a TOML config file with default blame options.")
	flags.String("newest", "", "Commit to start blaming from (defaults to HEAD).")
	flags.String("oldest", "", "Commit to stop the walk at, inclusive.")
	flags.Uint32("min-line", 1, "First line of the window to blame, 1-based.")
	flags.Uint32("max-line", 0, "Last line of the window to blame, 0 means end of file.")
	flags.Bool("track-copies-same-file", false, "Follow the file across renames in its own history.")
	flags.Bool("track-copies-same-commit-moves", false, "Additionally consider same-commit moves.")
	flags.Bool("track-copies-same-commit-copies", false, "Additionally consider same-commit copies.")
	flags.Bool("track-copies-any-commit-copies", false, "Additionally consider copies from any blob in the parent commit.")
	flags.Bool("first-parent", false, "Follow only the first parent of merge commits.")
	flags.Bool("ignore-whitespace", false, "Ignore leading/trailing whitespace differences when diffing.")
	flags.Bool("mailmap", false, "Rewrite author signatures through .mailmap.")
	flags.String("buffer", "", "Path to a local file to layer as an uncommitted buffer over the blame result.")
	flags.Bool("json", false, "Output JSON instead of the porcelain summary.")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
