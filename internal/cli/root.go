// Package cli implements the storyforge CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zhouzirui/storyforge/internal/store"
)

var saveDirFlag string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "storyforge",
	Short: "AI-narrated persistent adventure sessions",
	Long: "An AI game master for persistent adventure sessions. Saves are plain XML\n" +
		"documents on disk; quit any time and the story resumes where it stopped.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&saveDirFlag, "save-dir", "s", "", "Session save directory (default: $SAVE_DIR or ./sessions)")
}

func saveDir() string {
	if saveDirFlag != "" {
		return saveDirFlag
	}
	if env := os.Getenv("SAVE_DIR"); env != "" {
		return env
	}
	return "sessions"
}

func openStore() *store.Store {
	return store.New(saveDir())
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
