package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete all saved sessions and the transcript",
		Run:   runWipe,
	}
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	RootCmd.AddCommand(cmd)
}

func runWipe(cmd *cobra.Command, args []string) {
	yes, _ := cmd.Flags().GetBool("yes")
	st := openStore()

	if !yes {
		fmt.Printf("This permanently deletes every session and transcript in %s. Type 'yes' to continue: ", st.Dir())
		in := bufio.NewScanner(os.Stdin)
		if !in.Scan() || strings.TrimSpace(in.Text()) != "yes" {
			fmt.Println("Aborted.")
			return
		}
	}

	if err := st.Wipe(); err != nil {
		exitErr("wipe saves", err)
	}
	fmt.Println("All sessions wiped. The next adventure starts fresh.")
}
