package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nexuslabs/nexus/internal/constants"
	"github.com/nexuslabs/nexus/internal/pidfile"
	"github.com/nexuslabs/nexus/internal/style"
)

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Tear down all workspace processes",
	Long: `Stop every process this tool started in the workspace: the
background monitors and all agent heartbeats. Pid records are cleared so a
later setup starts clean.`,
	RunE: runDown,
}

func init() {
	rootCmd.AddCommand(downCmd)
}

func runDown(cmd *cobra.Command, args []string) error {
	dir, cfg, err := loadWorkspace()
	if err != nil {
		return err
	}

	store := pidfile.NewStore(dir)
	cleared, err := clearHeartbeats(store)
	if err != nil {
		return err
	}
	for _, id := range cleared {
		fmt.Printf("Stopped heartbeat for %s.\n", id)
	}

	if err := newSupervisor(dir, cfg).Stop(); err != nil {
		return err
	}
	style.PrintSuccess("Workspace is down.")
	return nil
}

// clearHeartbeats terminates every recorded heartbeat owner and removes the
// records. Returns the agent IDs that were cleared.
func clearHeartbeats(store *pidfile.Store) ([]string, error) {
	keys, err := store.List()
	if err != nil {
		return nil, err
	}

	var cleared []string
	for _, key := range keys {
		id, ok := strings.CutPrefix(key, constants.HeartbeatKeyPrefix)
		if !ok {
			continue
		}
		if err := store.TerminateAndClear(key); err != nil {
			return cleared, err
		}
		cleared = append(cleared, id)
	}
	return cleared, nil
}
