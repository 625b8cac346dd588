// teekalk prices tea blends from the command line and manages the configured store.
//
// Usage:
//
//	teekalk price --ingredient Assam:90:24 --ingredient Bergamotte:10:60 --weight 100 --margin 0.5
//	teekalk margin --ingredient Assam:100:20 --weight 100 --price 19.90
//	teekalk export --format xlsx --out kalkulation.xlsx
//	teekalk seed
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:                      "teekalk",
		Usage:                     "Cost and price calculation for tea blends",
		Version:                   version,
		DisableSliceFlagSeparator: true,
		Commands: []*cli.Command{
			priceCommand(),
			marginCommand(),
			exportCommand(),
			seedCommand(),
		},
	}
}
