package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/64/kaiser/internal/alphabet"
	"github.com/64/kaiser/internal/cipher"
	"github.com/64/kaiser/internal/registry"
)

func (a *app) ciphersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ciphers",
		Short: "List the supported ciphers and their key syntax",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tENGINE\tSHAPE\tKEY")
			for _, name := range registry.Names() {
				e, err := registry.Lookup(name)
				if err != nil {
					return err
				}
				shape := "-"
				if e.ShapeHelp != "" {
					shape = fmt.Sprintf("%s (%d)", e.ShapeHelp, e.DefaultShape)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Name, e.DefaultEngine, shape, e.KeyHelp)
			}
			return tw.Flush()
		},
	}
}

func (a *app) encryptCmd() *cobra.Command {
	return a.transformCmd("encrypt", "Encrypt text with a known key", cipher.Cipher.Encrypt)
}

func (a *app) decryptCmd() *cobra.Command {
	return a.transformCmd("decrypt", "Decrypt text with a known key", cipher.Cipher.Decrypt)
}

// transformCmd builds encrypt or decrypt. Letters keep their case and
// everything else is copied through.
func (a *app) transformCmd(use, short string, apply func(cipher.Cipher, *alphabet.Buffer)) *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   use + " <cipher> [file]",
		Short: short,
		Args:  rangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				return usageErrorf("%s needs --key", use)
			}
			e, err := registry.Lookup(args[0])
			if err != nil {
				return err
			}
			c, err := e.Parse(key)
			if err != nil {
				return err
			}
			buf, _, err := a.readBuffer(args[1:])
			if err != nil {
				return err
			}
			apply(c, buf)
			return writeText(a.stdout, buf.Render())
		},
	}
	cmd.Flags().StringVarP(&key, "key", "k", "", "cipher key, see 'kaiser ciphers' for the syntax")
	return cmd
}
