// Command datalens runs the analysis actions of the datalens server against
// local files, without starting HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/JonMunkholm/datalens/internal/core"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if core.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		}
		os.Exit(1)
	}
}
