package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/searchsync/internal/domain/mapping"
	modeluc "github.com/kailas-cloud/searchsync/internal/usecase/model"
)

type mappingOutput struct {
	Index   string          `json:"index"`
	Type    string          `json:"type"`
	Mapping mapping.Mapping `json:"mapping"`
}

// newMappingCmd prints generated mappings without touching any backend.
func newMappingCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mapping [model...]",
		Short: "Print the generated index mappings of configured models",
		Long: `Generate the index mapping of every configured model (or only the named
ones) and print it as JSON. No connection to the store or the index is made.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}

			reg := modeluc.New(nil)
			for _, mc := range cfg.Models {
				if _, err := reg.Register(cmd.Context(), mc.Definition()); err != nil {
					return fmt.Errorf("register %s: %w", mc.Name, err)
				}
			}

			out := make(map[string]mappingOutput)
			names := args
			if len(names) == 0 {
				for _, m := range reg.List() {
					names = append(names, m.Name())
				}
			}
			for _, name := range names {
				m, err := reg.Get(name)
				if err != nil {
					return err
				}
				out[m.Name()] = mappingOutput{Index: m.Index(), Type: m.Type(), Mapping: m.Mapping()}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
