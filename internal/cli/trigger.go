package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bjorheimar/catalog-sync/internal/catalogsync"
	"github.com/bjorheimar/catalog-sync/internal/catalogsync/listener"
	"github.com/bjorheimar/catalog-sync/internal/catalogsync/trigger"
	"github.com/bjorheimar/catalog-sync/internal/pkg/broker"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type TriggerOptions struct {
	*RootOptions
	RequestedBy string
}

func NewTriggerCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TriggerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trigger <scope> [store-id]",
		Short: "Publish a sync request for a running server to pick up",
		Long: `Publish a SyncRequested event to KAFKA_TOPIC_SYNC.

Example:
  catalog-sync trigger catalog
  catalog-sync trigger inventory 104 --requested-by cron`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := catalogsync.ParseScope(args[0])
			if err != nil {
				return err
			}
			req := trigger.Request{Scope: scope}
			if len(args) == 2 {
				req.StoreExternalID = args[1]
			}
			if scope == catalogsync.ScopeInventory && req.StoreExternalID == "" {
				return trigger.ErrMissingStore
			}

			event := listener.NewSyncRequested(uuid.NewString(), req, opts.RequestedBy, time.Now().UTC())
			value, err := json.Marshal(event)
			if err != nil {
				return err
			}

			cfg := opts.cfg
			producer := broker.NewProducer(&broker.Config{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
			defer producer.Close()

			key := string(scope)
			if req.StoreExternalID != "" {
				key += ":" + req.StoreExternalID
			}
			if err := producer.Publish(commandContext(cmd), []byte(key), value); err != nil {
				return fmt.Errorf("publish sync request: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %s (%s)\n", event.EventID, key)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.RequestedBy, "requested-by", "cli", "requester recorded in the sync logs")
	return cmd
}
