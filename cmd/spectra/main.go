// spectra - a colour palette extractor
//
// spectra extracts a small, perceptually diverse colour palette from an
// image and prints it in a stable order.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"os"

	"github.com/jmylchreest/spectra/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
