package main

import (
	"os"

	"horse.fit/pdfdesk/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
