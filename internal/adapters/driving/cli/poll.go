package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pollbridge/internal/core/domain"
	"github.com/custodia-labs/pollbridge/internal/core/services"
)

var pollLearning bool

var pollCmd = &cobra.Command{
	Use:   "poll [instance-id]",
	Short: "Run trigger polls",
	Long: `Runs one polling cycle for a configured trigger instance, or for
all of them when no instance is given. With --learning, samples one
entity without reading or writing persisted state.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPoll,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll all triggers on a schedule",
	Long:  `Runs the polling loop until interrupted, persisting snapshots between cycles.`,
	RunE:  runWatch,
}

func init() {
	pollCmd.Flags().BoolVar(&pollLearning, "learning", false, "sample one entity without touching state")
	rootCmd.AddCommand(pollCmd)
	rootCmd.AddCommand(watchCmd)
}

func runPoll(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if err := registerTriggers(ctx); err != nil {
		return err
	}

	triggers := scheduledTriggers()
	if len(args) > 0 {
		trig, err := findTrigger(triggers, args[0])
		if err != nil {
			return err
		}
		triggers = []services.ScheduledTrigger{trig}
	}
	if len(triggers) == 0 {
		return fmt.Errorf("no trigger instances configured")
	}

	for _, trig := range triggers {
		if pollLearning {
			if err := runLearning(ctx, cmd, trig); err != nil {
				return err
			}
			continue
		}

		scheduler := services.NewPollScheduler(pollInterval(), dispatcher, stateStore, nil)
		if err := scheduler.PollOnce(ctx, trig); err != nil {
			return fmt.Errorf("poll %s: %w", trig.InstanceID, err)
		}
		cmd.Printf("Polled %s.\n", trig.InstanceID)
	}
	return nil
}

// runLearning dispatches one learning invocation and prints the sample.
func runLearning(ctx context.Context, cmd *cobra.Command, trig services.ScheduledTrigger) error {
	result, err := dispatcher.Dispatch(ctx, trig.Trigger, domain.TriggerInvocation{
		Params:       trig.Params,
		LearningMode: true,
	})
	if err != nil {
		return fmt.Errorf("learning poll %s: %w", trig.InstanceID, err)
	}
	return printEvents(cmd, trig.InstanceID, result.Events)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := registerTriggers(ctx); err != nil {
		return err
	}

	triggers := scheduledTriggers()
	if len(triggers) == 0 {
		return fmt.Errorf("no trigger instances configured")
	}

	cmd.Printf("Polling %d trigger(s) every %s. Ctrl-C to stop.\n", len(triggers), pollInterval())
	scheduler := services.NewPollScheduler(pollInterval(), dispatcher, stateStore, triggers)
	return scheduler.Start(ctx)
}

// findTrigger resolves a configured trigger instance by id.
func findTrigger(triggers []services.ScheduledTrigger, instanceID string) (services.ScheduledTrigger, error) {
	for _, trig := range triggers {
		if trig.InstanceID == instanceID {
			return trig, nil
		}
	}
	return services.ScheduledTrigger{}, fmt.Errorf("trigger instance %q: %w", instanceID, domain.ErrNotFound)
}

// printEvents renders events as indented JSON.
func printEvents(cmd *cobra.Command, instanceID string, events []domain.Entity) error {
	if len(events) == 0 {
		cmd.Printf("%s: no events.\n", instanceID)
		return nil
	}
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal events: %w", err)
	}
	cmd.Printf("%s:\n%s\n", instanceID, data)
	return nil
}
