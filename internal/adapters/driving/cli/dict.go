package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pollbridge/internal/connectors/airtable"
	"github.com/custodia-labs/pollbridge/internal/connectors/telegram"
	"github.com/custodia-labs/pollbridge/internal/core/domain"
)

var (
	dictSearch string
	dictCursor string
	dictBase   string
	dictTable  string
	dictRecord string
	dictLabel  string
)

var dictCmd = &cobra.Command{
	Use:       "dict {bases|tables|fields|records|comments|chats}",
	Short:     "List selector dictionaries",
	Long:      `Fetches one page of a selection dictionary, optionally filtered locally.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"bases", "tables", "fields", "records", "comments", "chats"},
	RunE:      runDict,
}

func init() {
	dictCmd.Flags().StringVar(&dictSearch, "search", "", "filter the fetched page locally")
	dictCmd.Flags().StringVar(&dictCursor, "cursor", "", "continuation cursor from a previous page")
	dictCmd.Flags().StringVar(&dictBase, "base", "", "base id (tables, fields, records, comments)")
	dictCmd.Flags().StringVar(&dictTable, "table", "", "table id (fields, records, comments)")
	dictCmd.Flags().StringVar(&dictRecord, "record", "", "record id (comments)")
	dictCmd.Flags().StringVar(&dictLabel, "label-field", "Name", "field used as the record label")
	rootCmd.AddCommand(dictCmd)
}

func runDict(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	page, err := fetchDictPage(ctx, args[0])
	if err != nil {
		return err
	}

	if len(page.Items) == 0 {
		cmd.Println("No items.")
	}
	for _, item := range page.Items {
		if item.Note != "" {
			cmd.Printf("  %s (%s) - %s\n", item.Label, item.Value, item.Note)
			continue
		}
		cmd.Printf("  %s (%s)\n", item.Label, item.Value)
	}
	if page.Cursor != "" {
		cmd.Printf("More pages: --cursor %s\n", page.Cursor)
	}
	return nil
}

func fetchDictPage(ctx context.Context, kind string) (*domain.DictionaryPage, error) {
	switch kind {
	case "chats":
		tg, err := telegramClient(ctx)
		if err != nil {
			return nil, err
		}
		return telegram.NewDictionaries(tg, dictionary).Chats(ctx, dictSearch)

	case "bases", "tables", "fields", "records", "comments":
		at, err := airtableClient(ctx)
		if err != nil {
			return nil, err
		}
		dicts := airtable.NewDictionaries(at, dictionary)

		switch kind {
		case "bases":
			return dicts.Bases(ctx, dictSearch, dictCursor)
		case "tables":
			return dicts.Tables(ctx, dictBase, dictSearch)
		case "fields":
			return dicts.Fields(ctx, dictBase, dictTable, dictSearch)
		case "records":
			return dicts.Records(ctx, dictBase, dictTable, dictLabel, dictSearch, dictCursor)
		case "comments":
			return dicts.Comments(ctx, dictBase, dictTable, dictRecord, dictSearch, dictCursor)
		}
	}
	return nil, fmt.Errorf("unknown dictionary %q", kind)
}
