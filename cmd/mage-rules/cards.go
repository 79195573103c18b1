package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/magefree/mage-rules-go/internal/catalog"
	"github.com/spf13/cobra"
)

func newCardsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cards [name...]",
		Short: "List the card catalog",
		Long:  `Lists every card in the catalog, or only the named cards.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printCards(cmd.OutOrStdout(), a.catalog, args)
		},
	}
}

func printCards(w io.Writer, cat *catalog.Catalog, names []string) error {
	if len(names) == 0 {
		names = cat.Names()
	}
	for _, name := range names {
		d, ok := cat.ByName(name)
		if !ok {
			return fmt.Errorf("unknown card %q", name)
		}
		fmt.Fprintln(w, describe(d))
	}
	return nil
}

func describe(d *catalog.Descriptor) string {
	var b strings.Builder
	b.WriteString(d.Name)
	if d.HasCost {
		fmt.Fprintf(&b, " %s", d.ManaCost)
	}
	b.WriteString(" -")
	for _, st := range d.Supertypes {
		fmt.Fprintf(&b, " %s", st)
	}
	fmt.Fprintf(&b, " %s", d.Types)
	if len(d.Subtypes) > 0 {
		b.WriteString(" -")
		for _, st := range d.Subtypes {
			fmt.Fprintf(&b, " %s", st)
		}
	}
	if d.PT != nil {
		fmt.Fprintf(&b, " %s", d.PT)
	}
	return b.String()
}
