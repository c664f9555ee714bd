package main

import (
	"fmt"
	"os"

	"go.uber.org/multierr"
)

func main() {
	c := &cli{}

	err := c.command().Execute()
	err = multierr.Append(err, c.close())

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
