package commands

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Alp4ka/docpager"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func newEncodeCommand(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode field=value...",
		Short: "Encode a cursor token for the configured keys",
		Long: `Encode a cursor token for the configured keys.

Values of typed keys go through the key coercer. Values of untyped keys are
stored as integers, floats or booleans when they parse as one, as text
otherwise.`,
		Example: `  docpager encode --key createdAt:desc:time createdAt=2024-01-02T03:04:05Z _id=65a1f0c2e4b0a1b2c3d4e5f6
  DOCPAGER_SECRET=s3cr3t docpager encode --key likes:desc:int likes=30 _id=65a1f0c2e4b0a1b2c3d4e5f6`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.config()
			if err != nil {
				return err
			}

			builder, err := env.builder()
			if err != nil {
				return err
			}

			coerced := make(map[string]bool)
			for _, key := range builder.Keys() {
				coerced[key.Field] = key.Coerce != nil
			}

			values := make(map[string]any, len(args))
			for _, arg := range args {
				field, value, ok := strings.Cut(arg, "=")
				if !ok || field == "" {
					return fmt.Errorf("malformed value '%s', expected field=value", arg)
				}
				values[field] = lo.Ternary[any](coerced[field], value, scalarValue(value))
			}

			// Round the values through the key coercers so that the token
			// carries the canonical form.
			pivot := builder.ReconstructPivot(values)
			token, err := docpager.NewCodec(cfg.Secret).Encode(docpager.Payload{
				Scheme: builder.Scheme(),
				Values: builder.TokenPayload(pivot),
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	return cmd
}

// scalarValue reads a value given for a key without a coercer. Integers,
// floats and booleans keep their type in the token; anything else is text.
func scalarValue(raw string) any {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	if raw == "true" || raw == "false" {
		return raw == "true"
	}

	return raw
}
