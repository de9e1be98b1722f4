package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/slabkit/slab"
	"github.com/joshuapare/slabkit/slab/account"
	"github.com/joshuapare/slabkit/slab/host"
)

var infoSchema string

var infoCmd = &cobra.Command{
	Use:   "info FILE",
	Short: "Show a slab buffer's discriminant, length, and layout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		logger.Debug("opening buffer", "path", path)

		h, err := host.OpenFile(path, host.DefaultCapacity)
		if err != nil {
			return err
		}
		defer h.Close()

		d, err := account.Peek(h)
		if err != nil {
			return err
		}
		printInfo("file:          %s\n", path)
		printInfo("discriminant:  %x\n", d[:])
		printInfo("logical bytes: %d\n", len(h.Bytes()))

		if infoSchema == "" {
			return nil
		}
		typ, err := parseSchema(infoSchema)
		if err != nil {
			return err
		}
		acct, err := account.Open(h, d, typ)
		if err != nil {
			return fmt.Errorf("payload does not match schema: %w", err)
		}
		printInfo("payload:       valid (%d bytes)\n", acct.Root().Len())

		if st, ok := typ.(slab.StructType); ok {
			s, err := st.Open(acct.Root())
			if err != nil {
				return err
			}
			for i, f := range st.Fields {
				printInfo("  %-16s %5d bytes at +%d\n",
					f.Name, s.Field(i).Len(), s.Field(i).Start()-acct.Root().Start())
			}
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().StringVar(&infoSchema, "schema", "", "Schema expression describing the payload")
	rootCmd.AddCommand(infoCmd)
}
