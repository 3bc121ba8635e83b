package main

import (
	"os"

	"github.com/portal-access/portal-access/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
