package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/frahmantamala/care-management/internal/core/events"
	"github.com/frahmantamala/care-management/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event bus utilities",
}

var eventData string

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event to the in-process bus",
	Long:  `Publish one of the contract lifecycle event types with a test payload, useful for checking subscriber wiring.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eventType := args[0]
		if !knownEventType(eventType) {
			fmt.Fprintf(os.Stderr, "unknown event type %q\n", eventType)
			os.Exit(1)
		}

		lg := logger.LoggerWrapper()
		bus := events.NewEventBus(lg)
		bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			lg.Info("test handler received event",
				"event_id", event.EventID(),
				"event_type", event.EventType(),
				"payload", event.Payload())
			return nil
		})

		evt := events.NewEvent(eventType, map[string]interface{}{
			"message": eventData,
			"source":  "cli",
		})
		lg.Info("publishing test event", "event_type", eventType, "event_id", evt.ID)

		if err := bus.Publish(context.Background(), evt); err != nil {
			lg.Error("failed to publish event", "error", err)
			os.Exit(1)
		}

		// handlers run async, give them a beat before exiting
		time.Sleep(100 * time.Millisecond)
	},
}

func knownEventType(t string) bool {
	switch t {
	case events.ContractCreated, events.ContractEnded,
		events.ContractVersionCreated, events.ContractVersionUpdated,
		events.ContractVersionDeleted, events.ContractDeleted,
		events.SignatureCompleted:
		return true
	}
	return false
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Event data message")
	eventCmd.AddCommand(publishEventCmd)
	rootCmd.AddCommand(eventCmd)
}
