package commands

import (
	"fmt"

	"github.com/Alp4ka/docpager"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
)

func newFilterCommand(env *environment) *cobra.Command {
	var (
		rawFilter     string
		after, before string
		search        string
		limit         int
	)

	cmd := &cobra.Command{
		Use:     "filter",
		Short:   "Print the MongoDB filter and sort a request resolves to",
		Example: `  docpager filter --key createdAt:desc:time --filter '{"author":"alice"}' --after <token>`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := env.config()
			if err != nil {
				return err
			}

			builder, err := env.builder()
			if err != nil {
				return err
			}

			filter := bson.M{}
			if rawFilter != "" {
				if err = bson.UnmarshalExtJSON([]byte(rawFilter), false, &filter); err != nil {
					return fmt.Errorf("cannot parse filter: %w", err)
				}
			}

			identifier := builder.Identifier()
			session, err := docpager.NewSession[bson.M](docpager.Request{
				Filter: filter,
				Paging: docpager.Paging{
					Limit:   limit,
					Cursors: &docpager.Cursors{After: after, Before: before},
				},
				Search:    search,
				Primary:   builder.Primary(),
				Secondary: builder.Secondary(),
			},
				docpager.WithConfig(cfg),
				docpager.WithIdentifier(identifier),
				docpager.WithLogger(env.logger),
			)
			if err != nil {
				return err
			}

			out, err := bson.MarshalExtJSONIndent(bson.D{
				{Key: "filter", Value: session.Filter()},
				{Key: "sort", Value: session.Sort()},
				{Key: "limit", Value: session.Limit()},
				{Key: "reverse", Value: session.IsReverse()},
			}, false, false, "", "  ")
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&rawFilter, "filter", "", "base filter as extended JSON")
	flags.StringVar(&after, "after", "", "resume after this cursor")
	flags.StringVar(&before, "before", "", "resume before this cursor")
	flags.StringVar(&search, "search", "", "full-text search term")
	flags.IntVar(&limit, "limit", 0, "page size")

	return cmd
}
