package main

import (
	"os"

	"hunit"
)

func main() {
	os.Exit(hunit.Main(hunit.Register))
}
