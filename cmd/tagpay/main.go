// Command tagpay is a terminal client for the wallet API. It exercises the
// same packages a mobile surface would: session storage, the connectivity
// gate, recipient resolution and the transfer confirmation workflow.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
