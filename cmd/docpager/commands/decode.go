package commands

import (
	"encoding/json"
	"errors"

	"github.com/Alp4ka/docpager"
	"github.com/spf13/cobra"
)

var errUnusableCursor = errors.New("cursor is not usable")

type decodeOutput struct {
	Status string         `json:"status"`
	Scheme string         `json:"scheme,omitempty"`
	Values map[string]any `json:"values,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func newDecodeCommand(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode token",
		Short: "Verify a cursor token and print its content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.config()
			if err != nil {
				return err
			}

			res := docpager.NewCodec(cfg.Secret).Decode(args[0])
			out := decodeOutput{Status: res.Status.String()}
			if res.Status == docpager.CursorDecoded {
				out.Scheme = res.Payload.Scheme
				out.Values = res.Payload.Values
			}
			if res.Err != nil {
				out.Error = res.Err.Error()
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err = enc.Encode(out); err != nil {
				return err
			}

			if res.Status != docpager.CursorDecoded {
				return errUnusableCursor
			}

			return nil
		},
	}

	return cmd
}
