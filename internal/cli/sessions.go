package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/zhouzirui/storyforge/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List saved sessions",
		Run:   runSessions,
	}
	RootCmd.AddCommand(cmd)
}

func runSessions(cmd *cobra.Command, args []string) {
	lines := sessionLines(openStore())
	if len(lines) == 0 {
		fmt.Println("No saved sessions.")
		return
	}
	for _, line := range lines {
		fmt.Println(line)
	}
}

// sessionLines renders one line per saved session. SessionFiles returns
// bare names, so each is joined with the store directory before loading.
func sessionLines(st *store.Store) []string {
	var lines []string
	for _, name := range st.SessionFiles() {
		sess, err := st.Load(filepath.Join(st.Dir(), name))
		if err != nil {
			lines = append(lines, fmt.Sprintf("%s  (unreadable: %v)", name, err))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s  %s, level %d %s %s, turn %d, at %s",
			sess.ID(),
			sess.PlayerName(),
			sess.Level(),
			sess.PlayerRace(),
			sess.PlayerClass(),
			sess.TurnCounter(),
			sess.CurrentLocation()))
	}
	return lines
}
