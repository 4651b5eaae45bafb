package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/attrmeta/internal/cli/output"
	"github.com/marmos91/attrmeta/internal/logger"
	"github.com/marmos91/attrmeta/pkg/attrmeta"
	"github.com/marmos91/attrmeta/pkg/config"
	"github.com/marmos91/attrmeta/pkg/options"
)

var metaCmd = &cobra.Command{
	Use:   "meta",
	Short: "Inspect and edit attribute metadata directly",
	Long: `Inspect and edit attribute metadata through the configured backend.

These commands open the options backend directly, without going through
the API server. Do not run them against a backend a live daemon is
using: concurrent writers race at the document level and the last
write wins.

Examples:
  attrmetad meta list 42
  attrmetad meta get 42 use_in_filter
  attrmetad meta set 42 use_in_filter true
  attrmetad meta delete 42 use_in_filter
  attrmetad meta delete 42`,
}

var metaListCmd = &cobra.Command{
	Use:   "list <attribute-id>",
	Short: "List all metadata for an attribute",
	Args:  cobra.ExactArgs(1),
	RunE:  runMetaList,
}

var metaGetCmd = &cobra.Command{
	Use:   "get <attribute-id> <key>",
	Short: "Get a metadata value",
	Args:  cobra.ExactArgs(2),
	RunE:  runMetaGet,
}

var metaSetCmd = &cobra.Command{
	Use:   "set <attribute-id> <key> <value>",
	Short: "Set a metadata value",
	Long: `Set a metadata value for an attribute.

The value is decoded as JSON when possible, so "true", "1" and
"[\"a\",\"b\"]" store a bool, a number and a list. Anything that does
not parse as JSON is stored as a plain string.`,
	Args: cobra.ExactArgs(3),
	RunE: runMetaSet,
}

var metaDeleteCmd = &cobra.Command{
	Use:   "delete <attribute-id> [key]",
	Short: "Delete one metadata value, or all of them",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runMetaDelete,
}

func init() {
	metaCmd.AddCommand(metaListCmd)
	metaCmd.AddCommand(metaGetCmd)
	metaCmd.AddCommand(metaSetCmd)
	metaCmd.AddCommand(metaDeleteCmd)
}

// openStore loads the configuration and opens the configured backend.
// The caller must Close the returned provider.
func openStore(ctx context.Context) (*attrmeta.Store, options.Provider, error) {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return nil, nil, err
	}

	// One-shot commands log only problems.
	if err := logger.Init(logger.Config{Level: "WARN", Format: "text", Output: "stderr"}); err != nil {
		return nil, nil, err
	}

	provider, err := config.CreateProvider(ctx, cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open options backend: %w", err)
	}

	return attrmeta.New(provider, cfg.OptionName), provider, nil
}

func parseAttributeID(arg string) (attrmeta.AttributeID, error) {
	n, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid attribute id %q: must be an integer", arg)
	}
	id := attrmeta.AttributeID(n)
	if !id.Valid() {
		return 0, fmt.Errorf("invalid attribute id %d: must be positive", n)
	}
	return id, nil
}

// renderValue formats a metadata value for display.
func renderValue(v attrmeta.Value) string {
	switch val := v.(type) {
	case string:
		return val
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}

func runMetaList(cmd *cobra.Command, args []string) error {
	id, err := parseAttributeID(args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, provider, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer provider.Close()

	meta := store.GetAll(ctx, id)
	if len(meta) == 0 {
		fmt.Printf("No metadata stored for attribute %d\n", id)
		return nil
	}

	keys := make([]string, 0, len(meta))
	for key := range meta {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{key, renderValue(meta[key])})
	}
	output.Table(cmd.OutOrStdout(), []string{"KEY", "VALUE"}, rows)

	return nil
}

func runMetaGet(cmd *cobra.Command, args []string) error {
	id, err := parseAttributeID(args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, provider, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer provider.Close()

	value, ok := store.Lookup(ctx, id, args[1])
	if !ok {
		return fmt.Errorf("no value stored for attribute %d key %q", id, args[1])
	}

	fmt.Println(renderValue(value))
	return nil
}

func runMetaSet(cmd *cobra.Command, args []string) error {
	id, err := parseAttributeID(args[0])
	if err != nil {
		return err
	}
	key := args[1]

	// JSON literals store typed values, anything else stays a string.
	var value attrmeta.Value
	if err := json.Unmarshal([]byte(args[2]), &value); err != nil {
		value = args[2]
	}

	ctx := context.Background()
	store, provider, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer provider.Close()

	if err := store.Update(ctx, id, key, value); err != nil {
		return fmt.Errorf("failed to update metadata: %w", err)
	}

	fmt.Printf("Set %s = %s for attribute %d\n", key, renderValue(value), id)
	return nil
}

func runMetaDelete(cmd *cobra.Command, args []string) error {
	id, err := parseAttributeID(args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, provider, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer provider.Close()

	if len(args) == 2 {
		if err := store.Delete(ctx, id, args[1]); err != nil {
			return fmt.Errorf("failed to delete metadata: %w", err)
		}
		fmt.Printf("Deleted %s for attribute %d\n", args[1], id)
		return nil
	}

	if err := store.DeleteAll(ctx, id); err != nil {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}
	fmt.Printf("Deleted all metadata for attribute %d\n", id)
	return nil
}
