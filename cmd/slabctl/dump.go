package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/slabkit/slab/account"
	"github.com/joshuapare/slabkit/slab/host"
)

var dumpPayloadOnly bool

var dumpCmd = &cobra.Command{
	Use:   "dump FILE",
	Short: "Hex-dump a slab buffer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := host.OpenFile(args[0], host.DefaultCapacity)
		if err != nil {
			return err
		}
		defer h.Close()

		b := h.Bytes()
		if dumpPayloadOnly {
			if len(b) < account.DiscriminantSize {
				return fmt.Errorf("buffer too short for a discriminant (%d bytes)", len(b))
			}
			b = b[account.DiscriminantSize:]
		}
		_, err = os.Stdout.WriteString(hex.Dump(b))
		return err
	},
}

func init() {
	dumpCmd.Flags().BoolVar(&dumpPayloadOnly, "payload", false, "Skip the discriminant prefix")
	rootCmd.AddCommand(dumpCmd)
}
